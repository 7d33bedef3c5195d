package compose

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// FrameSource provides the frame overlay image, waiting for it to load if
// needed.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// ImageFrame is an already decoded frame image.
type ImageFrame struct {
	Image image.Image
}

func (f ImageFrame) Frame(context.Context) (image.Image, error) {
	if f.Image == nil {
		return nil, errors.New("frame image not set")
	}
	return f.Image, nil
}

// FileFrame decodes a frame image from disk on first successful use and
// caches it. Failed loads are retried on the next call.
type FileFrame struct {
	path string

	mu  sync.Mutex
	img image.Image
}

// NewFileFrame returns a lazily loaded frame image.
func NewFileFrame(path string) *FileFrame {
	return &FileFrame{path: path}
}

func (f *FileFrame) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.img != nil {
		return f.img, nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open frame image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame image %s: %w", f.path, err)
	}
	f.img = img
	return img, nil
}
