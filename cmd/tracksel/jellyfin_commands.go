package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tracksel/internal/mpv"
	"tracksel/internal/services/jellyfin"
	"tracksel/internal/track"
)

type jellyfinStreamsOutput struct {
	ItemID            string                      `json:"item_id"`
	Tracks            track.List                  `json:"tracks"`
	ExternalSubtitles []jellyfin.ExternalSubtitle `json:"external_subtitles"`
}

func newJellyfinCommand(ctx *commandContext) *cobra.Command {
	jfCmd := &cobra.Command{
		Use:   "jellyfin",
		Short: "Read item tracks from a Jellyfin server",
	}
	jfCmd.AddCommand(newJellyfinStreamsCommand(ctx))
	jfCmd.AddCommand(newJellyfinAttachCommand(ctx))
	return jfCmd
}

func (c *commandContext) jellyfinStreams(cmd *cobra.Command, itemID string) (*jellyfinStreamsOutput, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := jellyfin.NewConfiguredClient(cfg)
	if err != nil {
		return nil, err
	}
	streams, err := client.MediaStreams(c.requestContext(cmd), itemID)
	if err != nil {
		return nil, err
	}
	return &jellyfinStreamsOutput{
		ItemID:            itemID,
		Tracks:            jellyfin.Tracks(streams),
		ExternalSubtitles: jellyfin.ExternalSubtitles(client.BaseURL(), streams),
	}, nil
}

func newJellyfinStreamsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "streams <item-id>",
		Short: "List the tracks and external subtitles of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := ctx.jellyfinStreams(cmd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, output)
			}
			printTracks(cmd, output.Tracks)
			if len(output.ExternalSubtitles) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(output.ExternalSubtitles))
			for _, sub := range output.ExternalSubtitles {
				rows = append(rows, []string{sub.Language, sub.Title, sub.MimeType, yesNo(sub.Forced), sub.URL})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "External subtitles:")
			fmt.Fprintln(out, renderTable(out, []string{"Language", "Title", "MIME", "Forced", "URL"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newJellyfinAttachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <item-id>",
		Short: "Sideload an item's external subtitles into the running mpv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := ctx.jellyfinStreams(cmd, args[0])
			if err != nil {
				return err
			}
			if len(output.ExternalSubtitles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No external subtitles")
				return nil
			}
			return ctx.withMPV(cmd, func(c context.Context, client *mpv.Client) error {
				for _, sub := range output.ExternalSubtitles {
					if err := client.AddSubtitle(c, sub.URL, sub.Title, sub.Language); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d subtitle track(s)\n", len(output.ExternalSubtitles))
				return nil
			})
		},
	}
}
