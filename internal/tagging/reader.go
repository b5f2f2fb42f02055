package tagging

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Info is the metadata read back from an audio file.
type Info struct {
	Path   string
	Title  string
	BPM    int
	HasBPM bool
	Genre  string
}

// Read returns the tag fields of the file at path. A file with no tag
// yields an Info with only Path set.
func Read(path string) (Info, error) {
	info := Info{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("%w: %s: %v", ErrUnreadableTag, path, err)
	}

	info.Title = m.Title()
	info.Genre = m.Genre()
	if raw, ok := rawBPM(m.Raw()); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			info.BPM, info.HasBPM = n, true
		}
	}
	return info, nil
}

// rawBPM finds the BPM text frame; ID3v2.2 names it TBP.
func rawBPM(raw map[string]interface{}) (string, bool) {
	for _, key := range []string{bpmFrameID, "TBP"} {
		if s, ok := raw[key].(string); ok {
			return strings.Trim(s, "\x00 "), true
		}
	}
	return "", false
}
