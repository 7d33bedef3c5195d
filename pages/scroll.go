package pages

import (
	"sync"
	"time"

	"nameplate/model"
)

// SnapDebounce is how long scrolling must pause before snapping.
const SnapDebounce = 120 * time.Millisecond

// ScrollReport is one scroll event as reported by the browser.
type ScrollReport struct {
	Container model.ContainerMetrics `json:"container"`
	Pages     []model.PageMetrics    `json:"pages"`
}

// Snap tells the browser to scroll the container so the page's top aligns
// with the container top.
type Snap struct {
	PageNumber int     `json:"pageNumber"`
	Top        float64 `json:"top"`
}

// ScrollTracker debounces scroll reports of one container and calls onSnap
// once scrolling settles.
type ScrollTracker struct {
	mu       sync.Mutex
	debounce time.Duration
	onSnap   func(Snap)
	timer    *time.Timer
	last     ScrollReport
	stopped  bool
}

// NewScrollTracker creates a tracker. A zero debounce uses SnapDebounce.
func NewScrollTracker(debounce time.Duration, onSnap func(Snap)) *ScrollTracker {
	if debounce <= 0 {
		debounce = SnapDebounce
	}
	return &ScrollTracker{debounce: debounce, onSnap: onSnap}
}

// Report records a scroll event and returns the clamped scroll offset.
func (t *ScrollTracker) Report(r ScrollReport) float64 {
	c := r.Container
	r.Container.ScrollTop = ClampScroll(c.ScrollTop, c.ScrollHeight, c.ClientHeight)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return r.Container.ScrollTop
	}
	t.last = r
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, t.fire)

	return r.Container.ScrollTop
}

func (t *ScrollTracker) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	r := t.last
	t.mu.Unlock()

	item, ok := CenteredPage(r.Container, r.Pages)
	if !ok {
		return
	}
	top := ClampScroll(item.OffsetTop, r.Container.ScrollHeight, r.Container.ClientHeight)
	t.onSnap(Snap{PageNumber: item.PageNumber, Top: top})
}

// Stop cancels a pending snap.
func (t *ScrollTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
