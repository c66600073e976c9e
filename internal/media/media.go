// Package media loads the fixed asset the dispatcher sends for the media
// action.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyAsset = errors.New("media asset is empty")

type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// Kind is the coarse media family transports use to pick a send method.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindOther Kind = "other"
)

func (a Asset) Kind() Kind {
	major, _, _ := strings.Cut(a.ContentType, "/")
	switch major {
	case "image":
		return KindImage
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	default:
		return KindOther
	}
}

// New builds an asset, sniffing the content type when the name's extension
// is not enough.
func New(name string, data []byte) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("%w: %s", ErrEmptyAsset, name)
	}

	return Asset{
		Name:        filepath.Base(name),
		ContentType: detectContentType(name, data),
		Data:        data,
	}, nil
}

func detectContentType(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	}

	return http.DetectContentType(data)
}

func LoadFile(path string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, fmt.Errorf("media asset: %w", err)
	}
	return New(path, data)
}

// Downloader fetches an object by key.
type Downloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

func LoadObject(ctx context.Context, d Downloader, key string) (Asset, error) {
	data, err := d.Download(ctx, key)
	if err != nil {
		return Asset{}, fmt.Errorf("media asset: %w", err)
	}
	return New(key, data)
}
