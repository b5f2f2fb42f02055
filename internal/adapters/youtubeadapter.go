package adapters

import (
	"context"
	"fmt"

	"ytbpm/internal/playlist"
	"ytbpm/internal/youtube"
)

const defaultOAuthAddr = "localhost:8080"

// YouTubeAdapter resolves playlists through the YouTube Data API
type YouTubeAdapter struct {
	BaseAdapter
	client *youtube.Client
	opts   Options
}

// NewYouTubeAdapter creates a new YouTubeAdapter
func NewYouTubeAdapter(opts Options) (*YouTubeAdapter, error) {
	if opts.OAuth {
		if opts.ClientID == "" || opts.ClientSecret == "" {
			return nil, fmt.Errorf("%w: youtube client ID and secret must be set in YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET", youtube.ErrMissingCredentials)
		}
	} else if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: set YOUTUBE_API_KEY or log in with --oauth", youtube.ErrMissingCredentials)
	}
	if opts.OAuthAddr == "" {
		opts.OAuthAddr = defaultOAuthAddr
	}

	return &YouTubeAdapter{
		BaseAdapter: NewBaseAdapter("YouTube Data API"),
		opts:        opts,
	}, nil
}

// Authenticate builds the API client, running the browser login when OAuth is enabled
func (a *YouTubeAdapter) Authenticate(ctx context.Context) error {
	if a.IsAuthenticated() {
		return nil
	}

	var (
		client *youtube.Client
		err    error
	)
	if a.opts.OAuth {
		var auth *youtube.Authenticator
		auth, err = youtube.NewAuthenticator(a.opts.ClientID, a.opts.ClientSecret, a.opts.OAuthAddr, a.opts.Out)
		if err != nil {
			return err
		}
		auth.ServiceOptions = a.opts.ServiceOptions
		client, err = auth.Login(ctx)
	} else {
		client, err = youtube.NewAPIKeyClient(ctx, a.opts.APIKey, a.opts.ServiceOptions...)
	}
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	a.client = client
	a.SetAuthenticated(true)
	return nil
}

// Resolve lists the playlist named by the URL's list= parameter. A URL
// without one is a single video and yields no entries.
func (a *YouTubeAdapter) Resolve(ctx context.Context, url string) ([]playlist.Entry, error) {
	playlistID := youtube.ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, nil
	}

	if err := a.Authenticate(ctx); err != nil {
		return nil, err
	}

	return a.client.PlaylistEntries(ctx, playlistID)
}
