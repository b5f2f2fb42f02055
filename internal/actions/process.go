package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v2"

	"ytbpm/internal/adapters"
	"ytbpm/internal/bootstrap"
	"ytbpm/internal/tagging"
	"ytbpm/internal/tempo"
	"ytbpm/internal/ui"
	"ytbpm/internal/workflow"
	"ytbpm/internal/youtube"
	"ytbpm/internal/ytdlp"
)

// Prompts for the run. Replaced in tests.
var (
	askURL       = promptURL
	askOverwrite = promptOverwrite
)

func promptURL(url *string) error {
	return huh.NewInput().
		Title("Enter a YouTube video or playlist URL").
		Value(url).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("a URL is required")
			}
			return nil
		}).
		Run()
}

func promptOverwrite(overwrite *bool) error {
	return huh.NewConfirm().
		Title("Overwrite existing MP3 files?").
		Affirmative("Yes").
		Negative("No").
		Value(overwrite).
		Run()
}

// ProcessURL makes sure the tools are in place, prompts for a URL and the
// overwrite policy, then downloads, analyses and tags every video behind it.
func ProcessURL(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	w := c.App.Writer
	printer := ui.NewPrinter(w)

	manifest, err := newBootstrapper(cfg, w).Ensure(ctx)
	if err != nil {
		return err
	}
	ytdlpPath := manifest.Path(bootstrap.YtDlp)

	url := strings.TrimSpace(c.String("url"))
	if url == "" {
		if err := askURL(&url); err != nil {
			return err
		}
		url = strings.TrimSpace(url)
	}
	overwrite := c.Bool("overwrite")
	if !c.IsSet("overwrite") {
		if err := askOverwrite(&overwrite); err != nil {
			return err
		}
	}

	adapter, err := adapters.NewSourceAdapter(cfg.Source, adapters.Options{
		YtdlpPath:    ytdlpPath,
		YtdlpArgs:    cfg.YtdlpArgs,
		APIKey:       cfg.APIKey,
		OAuth:        cfg.OAuth,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		OAuthAddr:    cfg.OAuthAddr,
		Out:          w,
	})
	if err != nil {
		return fmt.Errorf("failed to create source %s: %w", cfg.Source, err)
	}
	// Log in before any spinner starts so the consent URL stays readable.
	if a, ok := adapter.(*adapters.YouTubeAdapter); ok && youtube.ExtractPlaylistID(url) != "" {
		if err := a.Authenticate(ctx); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	downloader := ytdlp.NewClient(ytdlpPath, cfg.OutputDir)
	downloader.ExtraArgs = cfg.YtdlpArgs

	driver := workflow.NewDriver(
		adapter,
		downloader,
		tempo.NewEstimator(manifest.Path(bootstrap.FFmpeg), tempo.WithSampleRate(cfg.SampleRate)),
		tagging.NewWriter(),
		workflow.WithPrinter(printer),
		workflow.WithOutputDir(cfg.OutputDir),
		workflow.WithStepRunner(spinnerStep),
	)

	report, runErr := driver.Run(ctx, workflow.Request{URL: url, Overwrite: overwrite})
	if report.Mode == workflow.ModePlaylist {
		printSummary(printer, report)
	}
	if cfg.ReportPath != "" {
		if err := report.WriteCSV(cfg.ReportPath); err != nil {
			printer.Errorf("Could not write report %s: %v", cfg.ReportPath, err)
		} else {
			printer.Successf("Report written to %s", cfg.ReportPath)
		}
	}
	return exitStatus(report, runErr)
}

// exitStatus turns the outcome of a run into the command's result. Fatal
// errors pass through; otherwise the report decides the exit code.
func exitStatus(report *workflow.Report, runErr error) error {
	if runErr != nil {
		return runErr
	}
	if code := report.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// spinnerStep shows a spinner while step runs.
func spinnerStep(ctx context.Context, title string, step func(context.Context) error) error {
	return spinner.New().Title(title).Context(ctx).ActionWithErr(step).Run()
}

func printSummary(printer *ui.Printer, report *workflow.Report) {
	counts := report.Counts()
	printer.Blank()
	ui.Table(printer.Writer(), workflow.SummaryHeader, report.Rows())
	printer.Infof("Run %s: %d processed, %d skipped, %d failed in %s",
		report.RunID, counts.Processed, counts.Skipped, counts.Failed, report.Duration().Round(time.Second))
}
