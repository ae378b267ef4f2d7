package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracksel/internal/track"
)

type kindView struct {
	Kind           track.Kind `json:"kind"`
	DisplayName    string     `json:"display_name"`
	Property       string     `json:"mpv_property"`
	LanguageOption string     `json:"mpv_language_option,omitempty"`
	MimeBase       string     `json:"mime_base"`
}

func viewKind(k track.Kind) kindView {
	return kindView{
		Kind:           k,
		DisplayName:    k.DisplayName(),
		Property:       k.Property(),
		LanguageOption: k.LanguageOption(),
		MimeBase:       k.MimeBase(),
	}
}

func newKindsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "kinds",
		Short:       "List the track kinds in canonical order",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := track.Kinds()
			if asJSON {
				views := make([]kindView, 0, len(kinds))
				for _, k := range kinds {
					views = append(views, viewKind(k))
				}
				return writeJSON(cmd, views)
			}
			rows := make([][]string, 0, len(kinds))
			for _, k := range kinds {
				v := viewKind(k)
				rows = append(rows, []string{v.Kind.String(), v.DisplayName, v.Property, v.LanguageOption, v.MimeBase})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Kind", "Name", "mpv property", "Language option", "MIME"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newKindCommand() *cobra.Command {
	kindCmd := &cobra.Command{
		Use:         "kind",
		Short:       "Track kind utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	kindCmd.AddCommand(newKindParseCommand())
	return kindCmd
}

func newKindParseCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <value>",
		Short: "Validate a track kind string and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := track.ParseKind(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, viewKind(kind))
			}
			fmt.Fprintln(cmd.OutOrStdout(), kind.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
