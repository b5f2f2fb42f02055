package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sources accepted for playlist listing.
const (
	SourceYtdlp = "ytdlp"
	SourceAPI   = "api"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds runtime settings. Environment variables provide the
// defaults and command-line flags override them.
type Config struct {
	// External tools; empty means resolve via the tools dir or PATH
	YtdlpPath  string
	FFmpegPath string
	PythonPath string
	ToolsDir   string

	// YtdlpArgs are passed to every yt-dlp call, e.g. --cookies FILE
	YtdlpArgs []string

	OutputDir  string
	Source     string // ytdlp or api
	SampleRate int    // Hz used for tempo analysis
	ReportPath string // optional CSV export of the run

	// YouTube Data API
	APIKey       string
	OAuth        bool
	ClientID     string
	ClientSecret string
	OAuthAddr    string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		YtdlpPath:  envStr("YTBPM_YTDLP_PATH", ""),
		FFmpegPath: envStr("YTBPM_FFMPEG_PATH", ""),
		PythonPath: envStr("YTBPM_PYTHON_PATH", "python3"),
		ToolsDir:   envStr("YTBPM_TOOLS_DIR", ".ytbpm"),
		YtdlpArgs:  strings.Fields(envStr("YTBPM_YTDLP_ARGS", "")),

		OutputDir:  envStr("YTBPM_OUTPUT_DIR", "."),
		Source:     envStr("YTBPM_SOURCE", SourceYtdlp),
		SampleRate: envInt("YTBPM_SAMPLE_RATE", 22050),

		APIKey:       envStr("YOUTUBE_API_KEY", ""),
		ClientID:     envStr("YOUTUBE_CLIENT_ID", ""),
		ClientSecret: envStr("YOUTUBE_CLIENT_SECRET", ""),
		OAuthAddr:    envStr("YTBPM_OAUTH_ADDR", "localhost:8080"),
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceYtdlp, SourceAPI:
	default:
		return fmt.Errorf("%w: source must be %q or %q, got %q", ErrInvalid, SourceYtdlp, SourceAPI, c.Source)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalid)
	}
	if c.ToolsDir == "" {
		return fmt.Errorf("%w: tools dir must not be empty", ErrInvalid)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output dir must not be empty", ErrInvalid)
	}
	if c.Source == SourceAPI {
		if c.OAuth && (c.ClientID == "" || c.ClientSecret == "") {
			return fmt.Errorf("%w: --oauth needs YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET", ErrInvalid)
		}
		if !c.OAuth && c.APIKey == "" {
			return fmt.Errorf("%w: source api needs YOUTUBE_API_KEY or --oauth", ErrInvalid)
		}
	}
	return nil
}

// ToolPaths returns the explicitly configured executables keyed by tool name.
func (c *Config) ToolPaths() map[string]string {
	paths := map[string]string{}
	if c.YtdlpPath != "" {
		paths["yt-dlp"] = c.YtdlpPath
	}
	if c.FFmpegPath != "" {
		paths["ffmpeg"] = c.FFmpegPath
	}
	return paths
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
