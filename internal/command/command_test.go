package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeScript creates an executable shell script in a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRun_Success(t *testing.T) {
	tool := writeScript(t, `echo "hello $1"`)

	out, err := Run(context.Background(), tool, "world")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "hello world" {
		t.Errorf("Run() output = %q, want %q", got, "hello world")
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	tool := writeScript(t, `echo "boom" >&2; exit 3`)

	_, err := Run(context.Background(), tool, "--flag")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if cerr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cerr.ExitCode)
	}
	if !strings.Contains(cerr.Stderr, "boom") {
		t.Errorf("Stderr = %q, want it to contain %q", cerr.Stderr, "boom")
	}
	if !strings.Contains(err.Error(), tool+" --flag") {
		t.Errorf("Error() = %q, want it to name the command", err.Error())
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	_, err := Run(context.Background(), "/nonexistent/path/to/tool")
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if cerr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", cerr.ExitCode)
	}
}

func TestRun_Canceled(t *testing.T) {
	tool := writeScript(t, `sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, tool)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestStream(t *testing.T) {
	tool := writeScript(t, `echo "out"; echo "err" >&2`)

	var buf bytes.Buffer
	if err := Stream(context.Background(), &buf, tool); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if !strings.Contains(buf.String(), "out") || !strings.Contains(buf.String(), "err") {
		t.Errorf("Stream() output = %q, want both streams", buf.String())
	}
}
