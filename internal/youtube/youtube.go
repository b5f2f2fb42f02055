// Package youtube lists playlist members through the YouTube Data API v3.
//
// Credentials are either an API key (YOUTUBE_API_KEY) or an OAuth login:
//
// 1. Register an application at: https://console.developers.google.com/
//   - Enable the YouTube Data API v3
//   - Create an API key, or OAuth 2.0 credentials (Desktop application type)
//
// 2. Set YOUTUBE_API_KEY, or YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/option"
	ytv3 "google.golang.org/api/youtube/v3"

	"ytbpm/internal/playlist"
)

// maxResults is the API page and batch limit.
const maxResults = 50

// ErrMissingCredentials is returned when neither an API key nor OAuth client is configured.
var ErrMissingCredentials = errors.New("youtube: missing credentials")

// Client wraps the YouTube Data API service.
type Client struct {
	service *ytv3.Service
}

// NewClient creates a client from raw service options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := ytv3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating YouTube client: %w", err)
	}
	return &Client{service: service}, nil
}

// NewAPIKeyClient creates a client authenticated by an API key.
func NewAPIKeyClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set YOUTUBE_API_KEY or log in with --oauth", ErrMissingCredentials)
	}
	return NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
}

// ExtractPlaylistID returns the list= parameter of a YouTube URL, or "" when
// the URL does not name a playlist.
func ExtractPlaylistID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Query().Get("list")
}

// PlaylistEntries retrieves every video in a playlist in playlist order,
// with each entry's tags filled from the video snippet.
func (c *Client) PlaylistEntries(ctx context.Context, playlistID string) ([]playlist.Entry, error) {
	var entries []playlist.Entry
	var nextPageToken string

	for {
		call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(maxResults).
			Context(ctx)

		if nextPageToken != "" {
			call = call.PageToken(nextPageToken)
		}

		response, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("error fetching playlist items: %w", err)
		}

		for _, item := range response.Items {
			// Removed videos keep their slot but lose the video id
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			videoID := item.ContentDetails.VideoId

			var title string
			if item.Snippet != nil {
				title = item.Snippet.Title
			}

			entries = append(entries, playlist.Entry{
				ID:    videoID,
				Title: title,
				URL:   fmt.Sprintf(playlist.VideoURLTemplate, videoID),
			})
		}

		nextPageToken = response.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	if err := c.fillTags(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// fillTags looks up video snippets in batches and sets each entry's tags.
func (c *Client) fillTags(ctx context.Context, entries []playlist.Entry) error {
	for start := 0; start < len(entries); start += maxResults {
		batch := entries[start:min(start+maxResults, len(entries))]

		ids := make([]string, len(batch))
		for i, e := range batch {
			ids[i] = e.ID
		}

		response, err := c.service.Videos.List([]string{"snippet"}).
			Id(ids...).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("error fetching video details: %w", err)
		}

		tags := make(map[string][]string, len(response.Items))
		for _, v := range response.Items {
			if v.Snippet != nil {
				tags[v.Id] = v.Snippet.Tags
			}
		}
		for i := range batch {
			batch[i].Tags = tags[batch[i].ID]
		}
	}
	return nil
}
