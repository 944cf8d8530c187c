// Package clipboard reads images from and writes text to the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/zhubert/parley/internal/attachment"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init initializes the clipboard. Safe to call multiple times; the first
// result is remembered.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
			logger.WithComponent("clipboard").Warn("unavailable", "error", err)
		}
	})
	return initErr
}

// ReadImage returns the image on the clipboard. ok is false when the
// clipboard holds no image.
func ReadImage() (img store.Image, ok bool, err error) {
	if err := Init(); err != nil {
		return store.Image{}, false, err
	}

	// The library hands images over PNG encoded.
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return store.Image{}, false, nil
	}
	logger.WithComponent("clipboard").Debug("read image", "bytes", len(data))

	img, err = attachment.FromBytes("pasted.png", data)
	if err != nil {
		return store.Image{}, false, err
	}
	return img, true, nil
}

// WriteText puts text on the clipboard.
func WriteText(text string) error {
	if err := Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	logger.WithComponent("clipboard").Debug("wrote text", "bytes", len(text))
	return nil
}
