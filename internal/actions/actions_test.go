package actions

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"ytbpm/internal/bootstrap"
	"ytbpm/internal/config"
	"ytbpm/internal/tagging"
	"ytbpm/internal/workflow"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"YTBPM_YTDLP_PATH", "YTBPM_FFMPEG_PATH", "YTBPM_TOOLS_DIR", "YTBPM_OUTPUT_DIR",
		"YTBPM_SOURCE", "YTBPM_SAMPLE_RATE", "YTBPM_YTDLP_ARGS", "YOUTUBE_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func newTestApp(out *bytes.Buffer, action cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:   "ytbpm",
		Writer: out,
		Flags:  append(ToolFlags(), ProcessFlags()...),
		Action: action,
		Commands: []*cli.Command{
			{Name: "check", Flags: ToolFlags(), Action: Check},
			{Name: "inspect", Action: Inspect},
		},
	}
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("YTBPM_OUTPUT_DIR", "from-env")
	t.Setenv("YTBPM_SAMPLE_RATE", "16000")

	var cfg config.Config
	var out bytes.Buffer
	app := newTestApp(&out, func(c *cli.Context) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	})

	err := app.Run([]string{"ytbpm", "--dir", "music", "--source", "api", "--api-key", "k", "--report", "run.csv",
		"--ytdlp-arg", "--cookies=c.txt", "--ytdlp-arg", "--limit-rate=1M"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if cfg.OutputDir != "music" {
		t.Errorf("OutputDir = %q, want flag value", cfg.OutputDir)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want env value", cfg.SampleRate)
	}
	if cfg.Source != config.SourceAPI || cfg.APIKey != "k" || cfg.ReportPath != "run.csv" {
		t.Errorf("cfg = %+v", cfg)
	}
	if want := []string{"--cookies=c.txt", "--limit-rate=1M"}; !reflect.DeepEqual(cfg.YtdlpArgs, want) {
		t.Errorf("YtdlpArgs = %q, want %q", cfg.YtdlpArgs, want)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)

	var out bytes.Buffer
	app := newTestApp(&out, func(c *cli.Context) error {
		_, err := loadConfig(c)
		return err
	})

	if err := app.Run([]string{"ytbpm", "--source", "soundcloud"}); err == nil {
		t.Error("expected validation error for unknown source")
	}
}

func TestCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes are not supported on windows")
	}
	clearEnv(t)

	bin := t.TempDir()
	ytdlp := filepath.Join(bin, "yt-dlp")
	ffmpeg := filepath.Join(bin, "ffmpeg")
	os.WriteFile(ytdlp, []byte("#!/bin/sh\necho 2025.01.15\n"), 0755)
	os.WriteFile(ffmpeg, []byte("#!/bin/sh\necho 'ffmpeg version 7.1'\n"), 0755)

	var out bytes.Buffer
	app := newTestApp(&out, nil)
	err := app.Run([]string{"ytbpm", "check",
		"--ytdlp-path", ytdlp,
		"--ffmpeg-path", ffmpeg,
		"--tools-dir", t.TempDir(),
	})
	if err != nil {
		t.Fatalf("check error = %v", err)
	}

	for _, s := range []string{"yt-dlp", "2025.01.15", "ffmpeg version 7.1"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output missing %q:\n%s", s, out.String())
		}
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	tagged := filepath.Join(dir, "Rainy Night.mp3")
	plain := filepath.Join(dir, "Plain.mp3")
	for _, p := range []string{tagged, plain} {
		if err := os.WriteFile(p, make([]byte, 2048), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := tagging.NewWriter().Write(tagged, 92, "lofi"); err != nil {
		t.Fatalf("tag: %v", err)
	}

	var out bytes.Buffer
	if err := newTestApp(&out, nil).Run([]string{"ytbpm", "inspect", tagged, plain}); err != nil {
		t.Fatalf("inspect error = %v", err)
	}

	got := out.String()
	for _, s := range []string{"TITLE", "Rainy Night.mp3", "92", "lofi", "Plain.mp3"} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing %q:\n%s", s, got)
		}
	}
}

func TestInspect_Errors(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(&out, nil)

	if err := app.Run([]string{"ytbpm", "inspect"}); err == nil {
		t.Error("expected error without files")
	}

	missing := filepath.Join(t.TempDir(), "missing.mp3")
	err := app.Run([]string{"ytbpm", "inspect", missing})
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("inspect error = %v, want read failure", err)
	}
	if !strings.Contains(out.String(), "[!] Error with "+missing) {
		t.Errorf("output missing error line:\n%s", out.String())
	}
}

// stubPrompts replaces the interactive prompts for the duration of a test.
func stubPrompts(t *testing.T, url func(*string) error, overwrite func(*bool) error) {
	t.Helper()
	oldURL, oldOverwrite := askURL, askOverwrite
	askURL, askOverwrite = url, overwrite
	t.Cleanup(func() { askURL, askOverwrite = oldURL, oldOverwrite })
}

func TestProcessURL_MissingToolFailsBeforePrompting(t *testing.T) {
	clearEnv(t)

	prompted := 0
	stubPrompts(t,
		func(*string) error { prompted++; return nil },
		func(*bool) error { prompted++; return nil },
	)

	missing := filepath.Join(t.TempDir(), "no-such-yt-dlp")
	var out bytes.Buffer
	err := newTestApp(&out, ProcessURL).Run([]string{"ytbpm",
		"--ytdlp-path", missing,
		"--tools-dir", t.TempDir(),
	})
	if !errors.Is(err, bootstrap.ErrToolMissing) {
		t.Fatalf("ProcessURL() error = %v, want ErrToolMissing", err)
	}
	if prompted != 0 {
		t.Errorf("prompted %d times before the tool check failed", prompted)
	}
}

func TestProcessURL_PromptsAfterToolCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes are not supported on windows")
	}
	clearEnv(t)

	bin := t.TempDir()
	ytdlp := filepath.Join(bin, "yt-dlp")
	ffmpeg := filepath.Join(bin, "ffmpeg")
	os.WriteFile(ytdlp, []byte("#!/bin/sh\necho 2025.01.15\n"), 0755)
	os.WriteFile(ffmpeg, []byte("#!/bin/sh\necho 'ffmpeg version 7.1'\n"), 0755)
	toolsDir := t.TempDir()

	errStop := errors.New("stop")
	manifestReady := false
	stubPrompts(t,
		func(*string) error {
			_, err := os.Stat(filepath.Join(toolsDir, "manifest.json"))
			manifestReady = err == nil
			return errStop
		},
		func(*bool) error { t.Error("overwrite prompt after URL prompt failed"); return nil },
	)

	var out bytes.Buffer
	err := newTestApp(&out, ProcessURL).Run([]string{"ytbpm",
		"--ytdlp-path", ytdlp,
		"--ffmpeg-path", ffmpeg,
		"--tools-dir", toolsDir,
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("ProcessURL() error = %v, want prompt error", err)
	}
	if !manifestReady {
		t.Error("URL prompt ran before the tool manifest was written")
	}
}

func TestExitStatus(t *testing.T) {
	fatal := errors.New("fetch failed")
	tests := []struct {
		name     string
		report   *workflow.Report
		runErr   error
		wantCode int
		wantErr  error
	}{
		{
			name:   "playlist with failures",
			report: &workflow.Report{Mode: workflow.ModePlaylist, Results: []workflow.ItemResult{{Status: workflow.StatusFailed}}},
		},
		{
			name:     "single video failed",
			report:   &workflow.Report{Mode: workflow.ModeSingle, Results: []workflow.ItemResult{{Status: workflow.StatusFailed}}},
			wantCode: 1,
		},
		{
			name:    "fatal error passes through",
			report:  &workflow.Report{},
			runErr:  fatal,
			wantErr: fatal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitStatus(tt.report, tt.runErr)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("exitStatus() = %v, want %v", err, tt.wantErr)
				}
			case tt.wantCode == 0:
				if err != nil {
					t.Errorf("exitStatus() = %v, want nil", err)
				}
			default:
				var exit cli.ExitCoder
				if !errors.As(err, &exit) || exit.ExitCode() != tt.wantCode {
					t.Errorf("exitStatus() = %v, want exit code %d", err, tt.wantCode)
				}
			}
		})
	}
}
