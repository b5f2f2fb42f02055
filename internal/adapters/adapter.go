package adapters

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/option"

	"ytbpm/internal/playlist"
)

// SourceAdapter resolves a URL into the ordered members of a playlist.
// An empty result means the URL names a single video.
type SourceAdapter interface {
	Name() string
	Resolve(ctx context.Context, url string) ([]playlist.Entry, error)
}

// PlatformType represents the supported playlist sources
type PlatformType string

const (
	YtdlpPlatform PlatformType = "ytdlp"
	APIPlatform   PlatformType = "api"
)

// Options carries what the adapters need from configuration
type Options struct {
	YtdlpPath string
	YtdlpArgs []string

	APIKey       string
	OAuth        bool
	ClientID     string
	ClientSecret string
	OAuthAddr    string

	// Out receives login instructions.
	Out io.Writer

	// ServiceOptions are passed to the YouTube API client.
	ServiceOptions []option.ClientOption
}

// NewSourceAdapter is a factory function that creates a new adapter for the specified platform
func NewSourceAdapter(platform string, opts Options) (SourceAdapter, error) {
	switch PlatformType(platform) {
	case YtdlpPlatform, "":
		return NewYtdlpAdapter(opts.YtdlpPath, opts.YtdlpArgs...), nil
	case APIPlatform:
		a, err := NewYouTubeAdapter(opts)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", platform)
	}
}
