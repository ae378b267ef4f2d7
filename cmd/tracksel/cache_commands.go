package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tracksel/internal/track"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the probe cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached probes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.requireCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			entries, err := cache.List(ctx.requestContext(cmd))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				counts := e.Tracks.Counts()
				rows = append(rows, []string{
					e.Path,
					strconv.Itoa(counts[track.KindVideo]),
					strconv.Itoa(counts[track.KindAudio]),
					strconv.Itoa(counts[track.KindSubtitle]),
					e.ProbedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Path", "Video", "Audio", "Sub", "Probed"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file>",
		Short: "Forget the cached probe of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.requireCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			removed, err := cache.Remove(ctx.requestContext(cmd), path)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not cached\n", path)
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.requireCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			n, err := cache.Clear(ctx.requestContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached probe(s)\n", n)
			return nil
		},
	}
}
