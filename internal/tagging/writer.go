// Package tagging writes and reads the BPM and genre fields of ID3v2 tags.
package tagging

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bogem/id3v2/v2"
)

// bpmFrameID is the ID3v2.3/2.4 frame holding beats per minute.
const bpmFrameID = "TBPM"

// ErrUnreadableTag is returned when a file's tag container cannot be opened.
var ErrUnreadableTag = errors.New("tagging: unreadable tag container")

// Writer persists tempo and genre into a file's ID3v2 tag.
type Writer struct{}

// NewWriter creates a tag writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write sets the BPM frame to bpm and, when genre is non-empty, the genre
// frame, then saves the tag back into the file. A file without a tag gets a
// fresh one. Existing frames other than those two are preserved.
func (w *Writer) Write(path string, bpm int, genre string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableTag, path, err)
	}
	defer tag.Close()

	tag.AddTextFrame(bpmFrameID, tag.DefaultEncoding(), strconv.Itoa(bpm))
	if genre != "" {
		tag.SetGenre(genre)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag %s: %w", path, err)
	}
	return nil
}
