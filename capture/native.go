package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"nameplate/view"
)

// DefaultNativeTimeout bounds one headless browser capture.
const DefaultNativeTimeout = 15 * time.Second

// PageContainerSelector is the scrollable page container of the web UI.
const PageContainerSelector = "#pages"

var browserNames = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// Browser captures the application page in a headless Chrome.
type Browser struct {
	execPath string
	timeout  time.Duration
	logger   *log.Logger

	once sync.Once
	path string
}

// NewBrowser returns the native strategy. An empty execPath searches PATH
// for a Chrome binary.
func NewBrowser(execPath string, timeout time.Duration, logger *log.Logger) *Browser {
	if timeout <= 0 {
		timeout = DefaultNativeTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Browser{
		execPath: execPath,
		timeout:  timeout,
		logger:   logger.WithPrefix("capture"),
	}
}

func (b *Browser) Kind() Kind { return Native }

func (b *Browser) Available(context.Context) bool {
	b.once.Do(func() {
		candidates := browserNames
		if b.execPath != "" {
			candidates = []string{b.execPath}
		}
		for _, name := range candidates {
			if p, err := exec.LookPath(name); err == nil {
				b.path = p
				return
			}
		}
	})
	return b.path != ""
}

// Capture opens req.URL at the snapshot's viewport size, restores the
// scroll position, hides the chrome and takes one screenshot. The browser
// is shut down before Capture returns.
func (b *Browser) Capture(ctx context.Context, req Request) (image.Image, error) {
	if !b.Available(ctx) {
		return nil, ErrStrategyUnavailable
	}
	if req.URL == "" {
		return nil, errors.New("native capture: no application url")
	}

	vp := req.Snapshot.Viewport
	w := int(math.Round(vp.Width))
	h := int(math.Round(vp.Height))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(b.path),
		chromedp.WindowSize(w, h),
		chromedp.Headless,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, b.timeout)
	defer cancelRun()

	script, err := prepareScript(req.Snapshot.Container.ScrollTop)
	if err != nil {
		return nil, err
	}

	var shot []byte
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(w), int64(h), chromedp.EmulateScale(vp.DPR())),
		chromedp.Navigate(req.URL),
		chromedp.WaitReady(PageContainerSelector, chromedp.ByQuery),
		chromedp.Evaluate(script, nil),
		chromedp.CaptureScreenshot(&shot),
	)
	if err != nil {
		return nil, fmt.Errorf("native capture: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	b.logger.Debug("headless screenshot taken", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

func prepareScript(scrollTop float64) (string, error) {
	selectors, err := json.Marshal(view.ChromeSelectors)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
  for (const sel of %s) {
    document.querySelectorAll(sel).forEach(el => { el.style.visibility = "hidden"; });
  }
  const pages = document.querySelector(%q);
  if (pages) { pages.scrollTop = %f; }
  return true;
})()`, selectors, PageContainerSelector, scrollTop), nil
}
