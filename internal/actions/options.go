package actions

import (
	"io"

	"github.com/urfave/cli/v2"

	"ytbpm/internal/bootstrap"
	"ytbpm/internal/config"
)

// ToolFlags locate the external tools. They are shared by every command.
func ToolFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "ytdlp-path", Usage: "path to the yt-dlp executable"},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: "path to the ffmpeg executable"},
		&cli.StringSliceFlag{Name: "ytdlp-arg", Usage: "extra argument for every yt-dlp call (repeatable)"},
		&cli.StringFlag{Name: "tools-dir", Usage: "directory holding the tool manifest and virtualenv"},
	}
}

// ProcessFlags configure a download run.
func ProcessFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "YouTube video or playlist URL (skips the prompt)"},
		&cli.BoolFlag{Name: "overwrite", Usage: "re-download files that already exist (skips the prompt)"},
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "output directory for mp3 files"},
		&cli.StringFlag{Name: "source", Usage: "playlist source: ytdlp or api"},
		&cli.BoolFlag{Name: "oauth", Usage: "log in with a Google account for the api source"},
		&cli.StringFlag{Name: "api-key", Usage: "YouTube Data API key for the api source"},
		&cli.IntFlag{Name: "sample-rate", Usage: "analysis sample rate in Hz"},
		&cli.StringFlag{Name: "report", Usage: "write per-track results to this CSV file"},
	}
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Load()

	strFlags := map[string]*string{
		"ytdlp-path":  &cfg.YtdlpPath,
		"ffmpeg-path": &cfg.FFmpegPath,
		"tools-dir":   &cfg.ToolsDir,
		"dir":         &cfg.OutputDir,
		"source":      &cfg.Source,
		"api-key":     &cfg.APIKey,
		"report":      &cfg.ReportPath,
	}
	for name, dst := range strFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("ytdlp-arg") {
		cfg.YtdlpArgs = c.StringSlice("ytdlp-arg")
	}
	if c.IsSet("oauth") {
		cfg.OAuth = c.Bool("oauth")
	}
	if c.IsSet("sample-rate") {
		cfg.SampleRate = c.Int("sample-rate")
	}

	return cfg, cfg.Validate()
}

func newBootstrapper(cfg config.Config, out io.Writer) *bootstrap.Bootstrapper {
	return bootstrap.New(bootstrap.Options{
		ToolsDir:   cfg.ToolsDir,
		PythonPath: cfg.PythonPath,
		Paths:      cfg.ToolPaths(),
		Out:        out,
	})
}

var manifestHeader = []string{"Tool", "Path", "Version"}

func manifestRows(m *bootstrap.Manifest) [][]string {
	rows := make([][]string, 0, len(m.Tools))
	for _, t := range m.Tools {
		rows = append(rows, []string{t.Name, t.Path, t.Version})
	}
	return rows
}
