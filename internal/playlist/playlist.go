package playlist

import (
	"fmt"
	"path/filepath"
)

// AudioExt is the extension every downloaded track is transcoded to
const AudioExt = ".mp3"

// VideoURLTemplate builds a watch URL from a video ID
const VideoURLTemplate = "https://www.youtube.com/watch?v=%s"

// Entry represents a single playlist member as reported by a resolver
type Entry struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"` // empty when the source has no title
	Tags  []string `json:"tags,omitempty"`  // nil when the source has no tags
	URL   string   `json:"url,omitempty"`
}

// VideoURL returns the URL used to download this entry
func (e Entry) VideoURL() string {
	return fmt.Sprintf(VideoURLTemplate, e.ID)
}

// Name returns the title, falling back to the ID
func (e Entry) Name() string {
	if e.Title != "" {
		return e.Title
	}
	return e.ID
}

// DownloadResult describes an audio file written by the downloader
type DownloadResult struct {
	FilePath string
	ID       string
	Title    string
	Tags     []string
}

// Genre returns the first tag verbatim, or "" when there are none.
func Genre(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

// ExpectedPath is where the downloader will put the audio for an entry.
// The overwrite check looks at exactly this path.
func ExpectedPath(dir string, e Entry) string {
	return FilePath(dir, e.Name())
}

// FilePath joins dir and name with the audio extension
func FilePath(dir, name string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+AudioExt)
}
