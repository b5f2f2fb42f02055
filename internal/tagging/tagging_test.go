package tagging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// writeAudio creates an untagged stand-in for an mp3 file.
func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, 4096), 0644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestWriter_Write(t *testing.T) {
	tests := []struct {
		name      string
		bpm       int
		genre     string
		wantGenre string
	}{
		{"with genre", 92, "lofi", "lofi"},
		{"without genre", 128, "", ""},
		{"zero bpm", 0, "ambient", "ambient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeAudio(t, "track.mp3")

			if err := NewWriter().Write(path, tt.bpm, tt.genre); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			info, err := Read(path)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !info.HasBPM || info.BPM != tt.bpm {
				t.Errorf("BPM = %d (present %v), want %d", info.BPM, info.HasBPM, tt.bpm)
			}
			if info.Genre != tt.wantGenre {
				t.Errorf("Genre = %q, want %q", info.Genre, tt.wantGenre)
			}
		})
	}
}

func TestWriter_WriteOverwritesBPM(t *testing.T) {
	path := writeAudio(t, "track.mp3")
	w := NewWriter()

	if err := w.Write(path, 92, "lofi"); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if err := w.Write(path, 120, ""); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if info.BPM != 120 {
		t.Errorf("BPM = %d, want 120", info.BPM)
	}
	if info.Genre != "lofi" {
		t.Errorf("Genre = %q, want earlier genre kept", info.Genre)
	}
}

func TestWriter_WritePreservesAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	audio := []byte("\xff\xfb\x90\x64 not really mpeg frames but stand-in payload")
	if err := os.WriteFile(path, audio, 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewWriter().Write(path, 100, ""); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) <= len(audio) || string(data[len(data)-len(audio):]) != string(audio) {
		t.Error("audio payload not preserved after tag")
	}
}

func TestWriter_WriteUnreadable(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := NewWriter().Write(filepath.Join(t.TempDir(), "missing.mp3"), 90, "")
		if !errors.Is(err, ErrUnreadableTag) {
			t.Errorf("Write() error = %v, want ErrUnreadableTag", err)
		}
	})

	t.Run("id3v2.2 tag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "old.mp3")
		header := []byte{'I', 'D', '3', 2, 0, 0, 0, 0, 0, 0}
		if err := os.WriteFile(path, append(header, make([]byte, 64)...), 0644); err != nil {
			t.Fatal(err)
		}
		err := NewWriter().Write(path, 90, "")
		if !errors.Is(err, ErrUnreadableTag) {
			t.Errorf("Write() error = %v, want ErrUnreadableTag", err)
		}
	})
}

func TestRead_NoTag(t *testing.T) {
	path := writeAudio(t, "plain.mp3")

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if info.HasBPM || info.Genre != "" {
		t.Errorf("Read() = %+v, want empty info", info)
	}
	if info.Path != path {
		t.Errorf("Path = %q, want %q", info.Path, path)
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.mp3")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRawBPM(t *testing.T) {
	tests := []struct {
		raw    map[string]interface{}
		want   string
		wantOK bool
	}{
		{map[string]interface{}{"TBPM": "92"}, "92", true},
		{map[string]interface{}{"TBP": "88\x00"}, "88", true},
		{map[string]interface{}{"TCON": "rock"}, "", false},
		{map[string]interface{}{"TBPM": 92}, "", false},
	}
	for _, tt := range tests {
		got, ok := rawBPM(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("rawBPM(%v) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestWriter_WriteKeepsTitle(t *testing.T) {
	path := writeAudio(t, "track.mp3")

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	tag.SetTitle("Rainy Night")
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
	tag.Close()

	if err := NewWriter().Write(path, 92, "lofi"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if info.Title != "Rainy Night" || info.BPM != 92 || info.Genre != "lofi" {
		t.Errorf("Read() = %+v", info)
	}
}
