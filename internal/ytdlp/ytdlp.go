// Package ytdlp drives the yt-dlp executable for playlist listing and audio downloads.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ytbpm/internal/command"
	"ytbpm/internal/playlist"
)

const (
	defaultPath = "yt-dlp"

	// AudioFormat is the format every download is transcoded to.
	AudioFormat = "mp3"
)

// ErrNoRecord is returned when yt-dlp prints no JSON record for a download.
var ErrNoRecord = errors.New("ytdlp: no JSON record in output")

// Client runs yt-dlp as a subprocess.
type Client struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// OutputDir is where downloaded audio is written. Defaults to ".".
	OutputDir string

	// ExtraArgs are appended to every invocation before the URL.
	ExtraArgs []string
}

// NewClient creates a client for the yt-dlp at path writing into outputDir.
func NewClient(path, outputDir string) *Client {
	return &Client{Path: path, OutputDir: outputDir}
}

func (c *Client) path() string {
	if c.Path != "" {
		return c.Path
	}
	return defaultPath
}

func (c *Client) outputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return "."
}

// record is the subset of a yt-dlp info JSON we care about.
type record struct {
	Type  string   `json:"_type"`
	ID    string   `json:"id"`
	Title *string  `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags"`
}

func (r record) title() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// isPlaylistMember reports whether a flat-listing record is a playlist entry.
// A single video listed in flat mode comes back as a full "video" record.
func (r record) isPlaylistMember() bool {
	return r.Type == "url" || r.Type == "url_transparent"
}

// ListFlat lists the members of a playlist without downloading media.
// A URL that names a single video yields an empty slice.
func (c *Client) ListFlat(ctx context.Context, url string) ([]playlist.Entry, error) {
	args := []string{"--flat-playlist", "--dump-json", "--no-warnings"}
	args = append(args, c.ExtraArgs...)
	args = append(args, url)

	out, err := command.Run(ctx, c.path(), args...)
	if err != nil {
		return nil, err
	}
	return parseFlatListing(out)
}

// parseFlatListing parses JSON-lines output from --flat-playlist --dump-json.
func parseFlatListing(data []byte) ([]playlist.Entry, error) {
	var entries []playlist.Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse yt-dlp listing line %d: %w", lineNo, err)
		}
		if !rec.isPlaylistMember() || rec.ID == "" {
			continue
		}

		entries = append(entries, playlist.Entry{
			ID:    rec.ID,
			Title: rec.title(),
			Tags:  rec.Tags,
			URL:   rec.URL,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read yt-dlp listing: %w", err)
	}

	return entries, nil
}

// downloadArgs builds the yt-dlp argument vector for a single audio download.
func (c *Client) downloadArgs(videoURL string) []string {
	outputTemplate := filepath.Join(c.outputDir(), "%(title)s.%(ext)s")
	args := []string{
		"-f", "bestaudio",
		"-x",
		"--audio-format", AudioFormat,
		"-o", outputTemplate,
		"-j", "--no-simulate", // info JSON on stdout while still downloading
		"--no-warnings",
	}
	args = append(args, c.ExtraArgs...)
	return append(args, videoURL)
}

// Download fetches the best audio for videoURL and transcodes it to mp3.
// The returned path is derived from the reported title; yt-dlp is
// responsible for making that title safe as a file name.
func (c *Client) Download(ctx context.Context, videoURL string) (*playlist.DownloadResult, error) {
	out, err := command.Run(ctx, c.path(), c.downloadArgs(videoURL)...)
	if err != nil {
		return nil, err
	}

	rec, err := lastRecord(out)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", videoURL, err)
	}
	if rec.Title == nil {
		return nil, fmt.Errorf("download %s: record for %q has no title", videoURL, rec.ID)
	}

	return &playlist.DownloadResult{
		FilePath: playlist.FilePath(c.outputDir(), rec.title()),
		ID:       rec.ID,
		Title:    rec.title(),
		Tags:     rec.Tags,
	}, nil
}

// lastRecord decodes the last non-blank line of output as a record.
func lastRecord(data []byte) (record, error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return record{}, fmt.Errorf("parse yt-dlp record: %w", err)
		}
		return rec, nil
	}
	return record{}, ErrNoRecord
}
