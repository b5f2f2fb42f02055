package adapters

import (
	"context"

	"ytbpm/internal/playlist"
	"ytbpm/internal/ytdlp"
)

// YtdlpAdapter resolves playlists with yt-dlp's flat listing
type YtdlpAdapter struct {
	BaseAdapter
	client *ytdlp.Client
}

// NewYtdlpAdapter creates a new YtdlpAdapter for the yt-dlp at path
func NewYtdlpAdapter(path string, extraArgs ...string) *YtdlpAdapter {
	client := ytdlp.NewClient(path, "")
	client.ExtraArgs = extraArgs
	return &YtdlpAdapter{
		BaseAdapter: NewBaseAdapter("yt-dlp"),
		client:      client,
	}
}

// Resolve lists the playlist members; a single video yields none
func (a *YtdlpAdapter) Resolve(ctx context.Context, url string) ([]playlist.Entry, error) {
	return a.client.ListFlat(ctx, url)
}
