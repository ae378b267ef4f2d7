package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tracksel/internal/logging"
	"tracksel/internal/media/ffprobe"
	"tracksel/internal/selection"
	"tracksel/internal/track"
	"tracksel/internal/trackcache"
)

type probeOutput struct {
	Path   string               `json:"path"`
	Cached bool                 `json:"cached"`
	Counts map[track.Kind]int   `json:"counts"`
	Tracks track.List           `json:"tracks"`
	Plan   []selection.Decision `json:"plan,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var kindFlag string
	var showPlan bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "List the tracks of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, filtered, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var cache *trackcache.Cache
			if !noCache {
				if cache, err = ctx.openCache(); err != nil {
					return err
				}
				if cache != nil {
					defer cache.Close()
				}
			}

			reqCtx := ctx.requestContext(cmd)
			logger := logging.WithContext(reqCtx, ctx.logger())
			inspect := func(c context.Context, path string) (track.List, error) {
				result, err := ffprobe.Inspect(c, cfg.Player.FFprobeBinary, path)
				if err != nil {
					return nil, err
				}
				return result.Tracks(), nil
			}
			list, cached, err := trackcache.Probe(reqCtx, cache, args[0], inspect, logger)
			if err != nil {
				return err
			}

			output := probeOutput{Path: args[0], Cached: cached, Counts: list.Counts(), Tracks: list}
			if showPlan {
				output.Plan = selection.Plan(list, ctx.preferences())
			}
			if filtered {
				output.Tracks = list.ByKind(kind)
			}

			if asJSON {
				return writeJSON(cmd, output)
			}
			out := cmd.OutOrStdout()
			source := "ffprobe"
			if cached {
				source = "cache"
			}
			fmt.Fprintf(out, "%s (%s)\n", output.Path, source)
			printTracks(cmd, output.Tracks)
			if showPlan {
				printPlan(cmd, output.Plan)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Only show tracks of this kind (video, audio, sub)")
	cmd.Flags().BoolVar(&showPlan, "plan", false, "Show the selection plan for the configured preferences")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the track cache")
	return cmd
}

func printPlan(cmd *cobra.Command, plan []selection.Decision) {
	rows := make([][]string, 0, len(plan))
	for _, d := range plan {
		rows = append(rows, []string{d.Kind.String(), d.Value(), string(d.Mode), d.Reason})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(out, []string{"Kind", "Value", "Mode", "Reason"}, rows, nil))
}
