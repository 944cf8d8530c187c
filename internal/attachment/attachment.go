// Package attachment turns files and clipboard data into validated
// store.Image values.
package attachment

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/store"
)

const (
	// MaxBytes is the largest attachment accepted.
	MaxBytes = 5 << 20
	// MaxDimension is the largest width or height accepted, in pixels.
	MaxDimension = 8000
)

// supported lists the media types the service can analyze.
var supported = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// FromFile reads and validates the image at path. A leading "~/" is
// expanded to the home directory.
func FromFile(path string) (store.Image, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return store.Image{}, pe.ImageInvalid("image", "no file given")
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return store.Image{}, pe.E(pe.Op("attachment.FromFile"), pe.KindNotFound, err)
	}
	if info.IsDir() {
		return store.Image{}, pe.ImageInvalid(filepath.Base(path), "is a directory")
	}
	if info.Size() > MaxBytes {
		return store.Image{}, tooLarge(filepath.Base(path), uint64(info.Size()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return store.Image{}, pe.E(pe.Op("attachment.FromFile"), pe.KindIO, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes validates raw image data. The media type is sniffed from the
// content; name is only used for display and the upload filename.
func FromBytes(name string, data []byte) (store.Image, error) {
	if len(data) == 0 {
		return store.Image{}, pe.ImageInvalid(name, "file is empty")
	}
	if len(data) > MaxBytes {
		return store.Image{}, tooLarge(name, uint64(len(data)))
	}

	mt := mimetype.Detect(data)
	mediaType := mt.String()
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if !supported[mediaType] {
		return store.Image{}, pe.ImageInvalid(name, fmt.Sprintf("unsupported type %s (want png, jpeg, gif or webp)", mediaType))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return store.Image{}, pe.ImageInvalid(name, "could not read image: "+err.Error())
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return store.Image{}, pe.ImageInvalid(name, fmt.Sprintf("%dx%d exceeds %dpx", cfg.Width, cfg.Height, MaxDimension))
	}

	if name == "" {
		name = "image" + mt.Extension()
	}
	return store.Image{
		Name:      name,
		Data:      data,
		MediaType: mediaType,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}

func tooLarge(name string, size uint64) error {
	return pe.ImageInvalid(name, fmt.Sprintf("%s is over the %s limit", humanize.Bytes(size), humanize.Bytes(MaxBytes)))
}

// Describe summarizes an image for the composer, e.g. "cat.png · 640×480 · 120 kB".
func Describe(img store.Image) string {
	parts := []string{img.Name}
	if img.Width > 0 && img.Height > 0 {
		parts = append(parts, fmt.Sprintf("%d×%d", img.Width, img.Height))
	}
	parts = append(parts, humanize.Bytes(uint64(len(img.Data))))
	return strings.Join(parts, " · ")
}
