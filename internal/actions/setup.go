package actions

import (
	"os"

	"github.com/urfave/cli/v2"

	"ytbpm/internal/ui"
)

// Setup installs yt-dlp into the tools virtualenv and records the tool manifest.
func Setup(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	printer := ui.NewPrinter(w)
	b := newBootstrapper(cfg, w)

	if _, err := os.Stat(b.VenvDir()); err == nil {
		printer.Infof("Virtual environment already exists.")
	} else {
		printer.Infof("Creating virtual environment in %s...", b.VenvDir())
	}
	printer.Infof("Installing dependencies inside virtual environment...")

	manifest, err := b.Setup(c.Context)
	if err != nil {
		return err
	}

	printer.Successf("Tools recorded in %s", b.ManifestPath())
	ui.Table(w, manifestHeader, manifestRows(manifest))
	return nil
}
