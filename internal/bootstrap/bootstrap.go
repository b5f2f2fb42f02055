// Package bootstrap provisions and locates the external tools ytbpm runs.
//
// Ensure resolves every required tool and records the result in a manifest
// under the tools directory; later runs reuse the manifest while the
// recorded paths still exist. Setup installs yt-dlp into a virtualenv inside
// the tools directory.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"ytbpm/internal/command"
)

// Tool names.
const (
	YtDlp  = "yt-dlp"
	FFmpeg = "ffmpeg"
)

// ErrToolMissing is returned when a required tool cannot be found.
var ErrToolMissing = errors.New("required tool not found")

// Requirement declares a tool that must be available.
type Requirement struct {
	Name        string
	VersionArgs []string
}

// Requirements is the declared tool manifest.
var Requirements = []Requirement{
	{Name: YtDlp, VersionArgs: []string{"--version"}},
	{Name: FFmpeg, VersionArgs: []string{"-version"}},
}

// Options configures a Bootstrapper.
type Options struct {
	ToolsDir   string            // holds the manifest and the virtualenv
	PythonPath string            // interpreter used to create the virtualenv
	Paths      map[string]string // explicit executable per tool name
	Out        io.Writer         // receives installer output during Setup
}

// Bootstrapper resolves and provisions external tools.
type Bootstrapper struct {
	toolsDir string
	python   string
	paths    map[string]string
	out      io.Writer
	lookPath func(string) (string, error)
	now      func() time.Time
}

// New creates a Bootstrapper.
func New(opts Options) *Bootstrapper {
	dir := opts.ToolsDir
	if dir == "" {
		dir = ".ytbpm"
	}
	python := opts.PythonPath
	if python == "" {
		python = "python3"
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Bootstrapper{
		toolsDir: dir,
		python:   python,
		paths:    opts.Paths,
		out:      out,
		lookPath: exec.LookPath,
		now:      time.Now,
	}
}

// ManifestPath is where the resolved tool manifest is stored.
func (b *Bootstrapper) ManifestPath() string {
	return filepath.Join(b.toolsDir, manifestFile)
}

// VenvDir is the virtualenv Setup installs into.
func (b *Bootstrapper) VenvDir() string {
	return filepath.Join(b.toolsDir, "venv")
}

func (b *Bootstrapper) venvBin(name string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(b.VenvDir(), "Scripts", name+".exe")
	}
	return filepath.Join(b.VenvDir(), "bin", name)
}

// Ensure returns the tool manifest, resolving tools only when the stored
// manifest is missing or stale. Calling it repeatedly is cheap.
func (b *Bootstrapper) Ensure(ctx context.Context) (*Manifest, error) {
	if m, err := loadManifest(b.ManifestPath()); err == nil && b.current(m) {
		return m, nil
	}
	return b.refresh(ctx)
}

// current reports whether m still describes usable tools for this configuration.
func (b *Bootstrapper) current(m *Manifest) bool {
	for _, req := range Requirements {
		t, ok := m.Tool(req.Name)
		if !ok || t.Path == "" {
			return false
		}
		if explicit := b.paths[req.Name]; explicit != "" {
			if path, err := b.lookPath(explicit); err != nil || path != t.Path {
				return false
			}
		}
		if _, err := os.Stat(t.Path); err != nil {
			return false
		}
	}
	return true
}

func (b *Bootstrapper) refresh(ctx context.Context) (*Manifest, error) {
	m := &Manifest{CreatedAt: b.now().UTC()}
	for _, req := range Requirements {
		path, err := b.resolve(req.Name)
		if err != nil {
			return nil, err
		}
		out, err := command.Run(ctx, path, req.VersionArgs...)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", req.Name, err)
		}
		m.Tools = append(m.Tools, Tool{
			Name:    req.Name,
			Path:    path,
			Version: firstLine(out),
		})
	}

	if err := saveManifest(b.ManifestPath(), m); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	return m, nil
}

// resolve finds a tool: explicit path, then the virtualenv, then PATH.
func (b *Bootstrapper) resolve(name string) (string, error) {
	if explicit := b.paths[name]; explicit != "" {
		path, err := b.lookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: %s at %s: %v", ErrToolMissing, name, explicit, err)
		}
		return path, nil
	}

	if venv := b.venvBin(name); isFile(venv) {
		return venv, nil
	}

	path, err := b.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s (run \"ytbpm setup\" or install it)", ErrToolMissing, name)
	}
	return path, nil
}

// Setup creates the virtualenv if needed, installs yt-dlp into it and
// rewrites the manifest. The first failing install step aborts setup.
func (b *Bootstrapper) Setup(ctx context.Context) (*Manifest, error) {
	if !isDir(b.VenvDir()) {
		if err := command.Stream(ctx, b.out, b.python, "-m", "venv", b.VenvDir()); err != nil {
			return nil, fmt.Errorf("create virtualenv: %w", err)
		}
	}

	pip := b.venvBin("pip")
	steps := [][]string{
		{"install", "--upgrade", "pip"},
		{"install", "--upgrade", YtDlp},
	}
	for _, args := range steps {
		if err := command.Stream(ctx, b.out, pip, args...); err != nil {
			return nil, fmt.Errorf("pip %s: %w", strings.Join(args, " "), err)
		}
	}

	if err := os.Remove(b.ManifestPath()); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return b.refresh(ctx)
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
