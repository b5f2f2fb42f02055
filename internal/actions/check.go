package actions

import (
	"github.com/urfave/cli/v2"

	"ytbpm/internal/ui"
)

// Check resolves the external tools and prints where they were found.
func Check(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	manifest, err := newBootstrapper(cfg, w).Ensure(c.Context)
	if err != nil {
		return err
	}

	ui.Table(w, manifestHeader, manifestRows(manifest))
	return nil
}
