package theme

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// AssetLoader fetches and decodes a theme image asset.
type AssetLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// HTTPAssetLoader loads http(s) URLs with an HTTP client and everything else
// from disk relative to BaseDir.
type HTTPAssetLoader struct {
	Client  *http.Client
	BaseDir string
}

// NewHTTPAssetLoader returns a loader resolving relative paths against baseDir.
func NewHTTPAssetLoader(baseDir string) *HTTPAssetLoader {
	return &HTTPAssetLoader{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseDir: baseDir,
	}
}

// Load implements AssetLoader.
func (l *HTTPAssetLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", src, err)
		}
		return img, nil
	}

	f, err := os.Open(filepath.Join(l.BaseDir, filepath.FromSlash(strings.TrimPrefix(src, "/"))))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}

// preload loads every asset concurrently and fails if any asset fails.
func preload(ctx context.Context, loader AssetLoader, assets []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range assets {
		g.Go(func() error {
			_, err := loader.Load(ctx, src)
			return err
		})
	}
	return g.Wait()
}
