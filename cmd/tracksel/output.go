package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tracksel/internal/language"
	"tracksel/internal/track"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws a rounded table when out is a terminal and a plain,
// tab-free ASCII table otherwise so output stays greppable in pipes.
func renderTable(out io.Writer, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if isTerminal(out) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Box.PaddingLeft = ""
		tw.Style().Box.PaddingRight = "  "
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func trackRows(list track.List) [][]string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		details := make([]string, 0, 3)
		switch {
		case t.Width > 0 && t.Height > 0:
			details = append(details, fmt.Sprintf("%dx%d", t.Width, t.Height))
		case t.Channels > 0:
			details = append(details, fmt.Sprintf("%dch", t.Channels))
		}
		if t.External {
			details = append(details, "external")
		}
		if t.Title != "" {
			details = append(details, t.Title)
		}
		lang := ""
		if t.Lang != "" {
			lang = fmt.Sprintf("%s (%s)", language.DisplayName(t.Lang), t.Lang)
		}
		rows = append(rows, []string{
			t.Kind.String(),
			fmt.Sprintf("%d", t.ID),
			flags(t),
			lang,
			t.Codec,
			strings.Join(details, ", "),
		})
	}
	return rows
}

var trackHeaders = []string{"Kind", "ID", "Flags", "Language", "Codec", "Details"}

var trackAligns = []columnAlignment{alignLeft, alignRight}

func flags(t track.Track) string {
	var parts []string
	if t.Selected {
		parts = append(parts, "selected")
	}
	if t.Default {
		parts = append(parts, "default")
	}
	if t.Forced {
		parts = append(parts, "forced")
	}
	return strings.Join(parts, ",")
}

func printTracks(cmd *cobra.Command, list track.List) {
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No tracks")
		return
	}
	fmt.Fprintln(out, renderTable(out, trackHeaders, trackRows(list), trackAligns))
}

func parseKindFlag(value string) (track.Kind, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false, nil
	}
	kind, err := track.ParseKind(value)
	if err != nil {
		return "", false, err
	}
	return kind, true, nil
}
