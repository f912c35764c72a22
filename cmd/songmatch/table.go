package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// minColumnWidth keeps narrow terminals from wrapping every word.
const minColumnWidth = 12

// renderTable renders rows with a rounded border. When width is positive,
// left-aligned columns are wrapped so the table fits in it.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment, width int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	// Three characters of border and padding per column, plus the outer edge.
	maxCell := 0
	if width > 0 {
		maxCell = max(minColumnWidth, (width-1)/columns-3)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		cc := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
		if i < len(aligns) && aligns[i] == alignRight {
			cc.Align = text.AlignRight
		} else if maxCell > 0 {
			cc.WidthMax = maxCell
		}
		columnConfigs = append(columnConfigs, cc)
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// terminalWidth returns the width of w when it is a terminal, otherwise 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	fd := int(f.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// printTable renders a table sized for w and writes it with a trailing newline.
func printTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	fmt.Fprintln(w, renderTable(headers, rows, aligns, terminalWidth(w)))
}

// formatScore renders a similarity score with five decimals.
func formatScore(v float64) string {
	return fmt.Sprintf("%.5f", v)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
