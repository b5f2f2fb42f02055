package actions

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"ytbpm/internal/tagging"
	"ytbpm/internal/ui"
)

// Inspect prints the title, BPM and genre stored in each file given as an argument.
func Inspect(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("inspect needs at least one file")
	}

	w := c.App.Writer
	printer := ui.NewPrinter(w)

	var rows [][]string
	failed := 0
	for _, path := range c.Args().Slice() {
		info, err := tagging.Read(path)
		if err != nil {
			printer.Errorf("Error with %s: %v", path, err)
			failed++
			continue
		}

		bpm := "-"
		if info.HasBPM {
			bpm = strconv.Itoa(info.BPM)
		}
		rows = append(rows, []string{filepath.Base(path), orDash(info.Title), bpm, orDash(info.Genre)})
	}

	if len(rows) > 0 {
		ui.Table(w, []string{"File", "Title", "BPM", "Genre"}, rows)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, c.NArg())
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
