package ui

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table renders rows under header as a bordered console table.
func Table(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	table.AppendBulk(rows)
	table.Render()
}
