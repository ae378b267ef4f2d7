package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tracksel/internal/logging"
	"tracksel/internal/mpv"
	"tracksel/internal/selection"
	"tracksel/internal/services"
	"tracksel/internal/track"
)

func newMPVCommand(ctx *commandContext) *cobra.Command {
	mpvCmd := &cobra.Command{
		Use:   "mpv",
		Short: "Inspect and switch tracks of a running mpv",
	}
	mpvCmd.AddCommand(newMPVTracksCommand(ctx))
	mpvCmd.AddCommand(newMPVSelectCommand(ctx))
	mpvCmd.AddCommand(newMPVApplyCommand(ctx))
	mpvCmd.AddCommand(newMPVWatchCommand(ctx))
	mpvCmd.AddCommand(newMPVArgsCommand(ctx))
	return mpvCmd
}

func newMPVTracksCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "List the player's current tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, filtered, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}
			return ctx.withMPV(cmd, func(c context.Context, client *mpv.Client) error {
				list, err := client.Tracks(c)
				if err != nil {
					return err
				}
				if filtered {
					list = list.ByKind(kind)
				}
				if asJSON {
					return writeJSON(cmd, list)
				}
				printTracks(cmd, list)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Only show tracks of this kind (video, audio, sub)")
	return cmd
}

func newMPVSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <kind> <id|no|auto>",
		Short: "Select, disable, or auto-select the track of one kind",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := track.ParseKind(args[0])
			if err != nil {
				return err
			}
			value := strings.TrimSpace(args[1])
			var id int
			if value != "no" && value != "auto" {
				id, err = strconv.Atoi(value)
				if err != nil || id <= 0 {
					return services.Wrap(services.ErrValidation, "mpv", "select",
						fmt.Sprintf("track must be a positive id, \"no\" or \"auto\", got %q", value), nil)
				}
			}
			return ctx.withMPV(cmd, func(c context.Context, client *mpv.Client) error {
				switch value {
				case "no":
					err = client.DisableKind(c, kind)
				case "auto":
					err = client.AutoKind(c, kind)
				default:
					list, listErr := client.Tracks(c)
					if listErr != nil {
						return listErr
					}
					if _, ok := list.Find(kind, id); !ok {
						return services.Wrap(services.ErrNotFound, "mpv", "select",
							fmt.Sprintf("no %s track with id %d", kind, id), nil)
					}
					err = client.SelectTrack(c, kind, id)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", kind.Property(), value)
				return nil
			})
		},
	}
}

func newMPVApplyCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured preferences to the current file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMPV(cmd, func(c context.Context, client *mpv.Client) error {
				list, err := client.Tracks(c)
				if err != nil {
					return err
				}
				plan := selection.Plan(list, ctx.preferences())
				applied := make([]selection.Decision, 0, len(plan))
				for _, d := range plan {
					if !mpv.InEffect(list, d) {
						applied = append(applied, d)
					}
				}
				if !dryRun {
					if applied, err = client.Apply(c, plan); err != nil {
						return err
					}
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"plan": plan, "applied": applied, "dry_run": dryRun})
				}
				printPlan(cmd, plan)
				out := cmd.OutOrStdout()
				switch {
				case len(applied) == 0:
					fmt.Fprintln(out, "Player already matches preferences")
				case dryRun:
					fmt.Fprintf(out, "Would change %d kind(s)\n", len(applied))
				default:
					fmt.Fprintf(out, "Changed %d kind(s)\n", len(applied))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without changing the player")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newMPVWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-apply preferences whenever mpv loads new tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(runCtx)
			return ctx.withMPV(cmd, func(c context.Context, client *mpv.Client) error {
				logger := logging.WithContext(c, ctx.logger())
				watcher := mpv.NewWatcher(client, ctx.preferences(), logger)
				watcher.OnApply = func(applied []selection.Decision) {
					for _, d := range applied {
						fmt.Fprintln(cmd.OutOrStdout(), d.String())
					}
				}
				return watcher.Run(c)
			})
		},
	}
}

func newMPVArgsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "args",
		Short: "Print mpv command-line options for the configured preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options := mpv.LanguageOptions(ctx.preferences())
			if socket := ctx.socketPath(); socket != "" {
				options = append(options, "--input-ipc-server="+socket)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(options, " "))
			return nil
		},
	}
}
