// Package workflow downloads, analyses and tags the videos behind a URL.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ytbpm/internal/playlist"
	"ytbpm/internal/ui"
)

// Resolver lists the members of a playlist URL; none means a single video.
type Resolver interface {
	Resolve(ctx context.Context, url string) ([]playlist.Entry, error)
}

// Downloader fetches the audio of one video.
type Downloader interface {
	Download(ctx context.Context, videoURL string) (*playlist.DownloadResult, error)
}

// Estimator returns the tempo of an audio file in whole BPM.
type Estimator interface {
	Estimate(ctx context.Context, path string) (int, error)
}

// Tagger writes tempo and genre into an audio file.
type Tagger interface {
	Write(path string, bpm int, genre string) error
}

// StepRunner runs one long step, for example behind a spinner.
type StepRunner func(ctx context.Context, title string, step func(context.Context) error) error

// RunDirect runs step with no decoration.
func RunDirect(ctx context.Context, _ string, step func(context.Context) error) error {
	return step(ctx)
}

// Request holds the answers to the run's prompts.
type Request struct {
	URL       string
	Overwrite bool
}

// Driver sequences resolve, download, estimate and tag for one URL.
type Driver struct {
	resolver   Resolver
	downloader Downloader
	estimator  Estimator
	tagger     Tagger

	printer   *ui.Printer
	runStep   StepRunner
	outputDir string
	exists    func(path string) bool
	now       func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithPrinter sets where progress lines go.
func WithPrinter(p *ui.Printer) Option {
	return func(d *Driver) { d.printer = p }
}

// WithStepRunner wraps long steps.
func WithStepRunner(r StepRunner) Option {
	return func(d *Driver) { d.runStep = r }
}

// WithOutputDir sets the directory the downloader writes into, used for
// the existing-file check.
func WithOutputDir(dir string) Option {
	return func(d *Driver) { d.outputDir = dir }
}

// NewDriver creates a Driver from its collaborators.
func NewDriver(resolver Resolver, downloader Downloader, estimator Estimator, tagger Tagger, opts ...Option) *Driver {
	d := &Driver{
		resolver:   resolver,
		downloader: downloader,
		estimator:  estimator,
		tagger:     tagger,
		printer:    ui.NewPlainPrinter(io.Discard),
		runStep:    RunDirect,
		outputDir:  ".",
		exists:     fileExists,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes the URL in req. A returned error is fatal to the run: the
// listing failed, the single video failed, or ctx was cancelled. Failures of
// individual playlist entries are recorded in the report instead.
func (d *Driver) Run(ctx context.Context, req Request) (*Report, error) {
	report := newReport(req, d.now())
	defer func() { report.FinishedAt = d.now() }()

	d.printer.Infof("Fetching playlist entries...")
	var entries []playlist.Entry
	err := d.runStep(ctx, "Fetching playlist entries...", func(ctx context.Context) error {
		var err error
		entries, err = d.resolver.Resolve(ctx, req.URL)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("fetch playlist entries: %w", err)
	}

	if len(entries) == 0 {
		report.Mode = ModeSingle
		d.printer.Infof("Processing single video...")

		// The overwrite answer does not apply to an explicitly requested video.
		res := d.process(ctx, 1, "", req.URL, playlist.Entry{})
		report.Results = append(report.Results, res)
		if res.Err != nil {
			return report, res.Err
		}
	} else {
		report.Mode = ModePlaylist
		d.printer.Infof("Processing playlist with %d entries...", len(entries))
		d.printer.Blank()

		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			res := d.processEntry(ctx, i+1, len(entries), entry, req.Overwrite)
			report.Results = append(report.Results, res)

			if res.Status == StatusFailed {
				if errors.Is(res.Err, context.Canceled) || ctx.Err() != nil {
					return report, ctx.Err()
				}
				d.printer.Errorf("Error with %s: %v", entry.ID, res.Err)
			}
		}
	}

	d.printer.Blank()
	d.printer.Donef("All done.")
	return report, nil
}

// processEntry applies the overwrite policy before processing a playlist entry.
func (d *Driver) processEntry(ctx context.Context, index, total int, entry playlist.Entry, overwrite bool) ItemResult {
	expected := playlist.ExpectedPath(d.outputDir, entry)
	if d.exists(expected) && !overwrite {
		d.printer.Skipf("Skipping existing file: %s", filepath.Base(expected))
		return ItemResult{
			Index:  index,
			ID:     entry.ID,
			Title:  entry.Title,
			Path:   expected,
			Status: StatusSkipped,
		}
	}

	progress := fmt.Sprintf(" (%d/%d)", index, total)
	return d.process(ctx, index, progress, entry.VideoURL(), entry)
}

// process downloads, estimates and tags one video.
func (d *Driver) process(ctx context.Context, index int, progress, videoURL string, entry playlist.Entry) ItemResult {
	res := ItemResult{Index: index, ID: entry.ID, Title: entry.Title}
	fail := func(err error) ItemResult {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	d.printer.Blank()
	d.printer.Infof("Downloading audio from: %s", videoURL)
	var dl *playlist.DownloadResult
	err := d.runStep(ctx, "Downloading"+progress+"...", func(ctx context.Context) error {
		var err error
		dl, err = d.downloader.Download(ctx, videoURL)
		return err
	})
	if err != nil {
		return fail(err)
	}
	if dl.ID != "" {
		res.ID = dl.ID
	}
	res.Title = dl.Title
	res.Path = dl.FilePath
	name := filepath.Base(dl.FilePath)

	d.printer.Infof("Analyzing BPM of %s...", name)
	var bpm int
	err = d.runStep(ctx, "Analyzing BPM"+progress+"...", func(ctx context.Context) error {
		var err error
		bpm, err = d.estimator.Estimate(ctx, dl.FilePath)
		return err
	})
	if err != nil {
		return fail(err)
	}
	res.BPM = bpm
	d.printer.Successf("BPM: %d", bpm)

	genre := playlist.Genre(dl.Tags)
	d.printer.Infof("Tagging BPM and genre metadata...")
	if err := d.tagger.Write(dl.FilePath, bpm, genre); err != nil {
		return fail(err)
	}
	res.Genre = genre
	d.printer.Successf("Metadata saved to %s", name)

	res.Status = StatusProcessed
	return res
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
