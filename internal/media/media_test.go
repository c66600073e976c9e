package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeDownloader struct {
	objects map[string][]byte
}

func (f *fakeDownloader) Download(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func TestLoadFileMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marsh.mp3")
	if err := os.WriteFile(path, []byte("ID3\x03fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Name != "marsh.mp3" {
		t.Errorf("expected base name, got %s", a.Name)
	}
	if a.ContentType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", a.ContentType)
	}
	if a.Kind() != KindAudio {
		t.Errorf("expected audio kind, got %s", a.Kind())
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.mp3")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New("x.mp3", nil); !errors.Is(err, ErrEmptyAsset) {
		t.Errorf("expected ErrEmptyAsset, got %v", err)
	}
}

func TestLoadObjectSniffsImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	d := &fakeDownloader{objects: map[string][]byte{"media/pic": png}}

	a, err := LoadObject(context.Background(), d, "media/pic")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Kind() != KindImage {
		t.Errorf("expected image, got %s (%s)", a.Kind(), a.ContentType)
	}

	if _, err := LoadObject(context.Background(), d, "missing"); err == nil {
		t.Error("expected error for missing object")
	}
}
