package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracksel/internal/preflight"
	"tracksel/internal/services"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, the mpv socket and Jellyfin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(ctx.requestContext(cmd), cfg)
			if flag := ctx.socketPath(); flag != cfg.Player.MPVSocket {
				for i := range results {
					if results[i].Name == "mpv socket" {
						results[i] = preflight.CheckSocket("mpv socket", flag)
						results[i].Optional = true
					}
				}
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := isTerminal(out)
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{r.Name, statusLabel(r, colorize), r.Detail})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))
			}
			if preflight.Failed(results) {
				return services.Wrap(services.ErrConfiguration, "doctor", "", "one or more required checks failed", nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func statusLabel(r preflight.Result, colorize bool) string {
	label, color := "OK", ansiGreen
	switch {
	case r.Passed:
	case r.Optional:
		label, color = "WARN", ansiYellow
	default:
		label, color = "FAIL", ansiRed
	}
	if !colorize {
		return label
	}
	return color + label + ansiReset
}
