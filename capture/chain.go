package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"sync"

	"github.com/charmbracelet/log"

	"nameplate/view"
)

// Chain runs capture strategies in preference order and falls back to the
// next one when a strategy fails.
type Chain struct {
	strategies []Strategy
	applier    view.Applier
	padding    float64
	logger     *log.Logger

	planOnce sync.Once
	plan     []Strategy
}

// NewChain creates a chain over strategies, in preference order. Chrome is
// hidden through applier while capturing.
func NewChain(applier view.Applier, padding float64, logger *log.Logger, strategies ...Strategy) *Chain {
	if applier == nil {
		applier = view.Discard{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{
		strategies: strategies,
		applier:    applier,
		padding:    padding,
		logger:     logger.WithPrefix("capture"),
	}
}

// Plan returns the kinds of the available strategies in the order they are
// tried. Availability is queried once.
func (c *Chain) Plan(ctx context.Context) []Kind {
	plan := c.available(ctx)
	kinds := make([]Kind, 0, len(plan))
	for _, s := range plan {
		kinds = append(kinds, s.Kind())
	}
	return kinds
}

func (c *Chain) available(ctx context.Context) []Strategy {
	c.planOnce.Do(func() {
		for _, s := range c.strategies {
			if s.Available(ctx) {
				c.plan = append(c.plan, s)
				continue
			}
			c.logger.Info("capture strategy unavailable", "strategy", s.Kind())
		}
	})
	return c.plan
}

// Capture hides the UI chrome, captures the viewport with the first strategy
// that succeeds and crops the frame container out of it. The chrome is shown
// again before Capture returns.
func (c *Chain) Capture(ctx context.Context, req Request) (*Result, error) {
	if err := req.Snapshot.Validate(); err != nil {
		return nil, err
	}

	plan := c.available(ctx)
	if len(plan) == 0 {
		return nil, &CaptureUnavailableError{}
	}

	restore, err := view.HideChrome(c.applier, view.ChromeSelectors...)
	if err != nil {
		c.logger.Warn("failed to hide chrome", "err", err)
	}
	defer func() {
		if err := restore(); err != nil {
			c.logger.Warn("failed to restore chrome", "err", err)
		}
	}()

	var attempts []Attempt
	for _, s := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := s.Capture(ctx, req)
		if err != nil {
			c.logger.Warn("capture failed, trying next strategy", "strategy", s.Kind(), "err", err)
			attempts = append(attempts, Attempt{Kind: s.Kind(), Err: err})
			continue
		}

		cropped := Crop(img, req.Snapshot.Viewport, req.Snapshot.FrameContainerRect, c.padding)

		var buf bytes.Buffer
		if err := png.Encode(&buf, cropped); err != nil {
			return nil, fmt.Errorf("encode capture: %w", err)
		}

		b := cropped.Bounds()
		c.logger.Debug("captured nameplate", "strategy", s.Kind(), "width", b.Dx(), "height", b.Dy())
		return &Result{
			PNG:      buf.Bytes(),
			Width:    b.Dx(),
			Height:   b.Dy(),
			Strategy: s.Kind(),
		}, nil
	}

	return nil, &CaptureUnavailableError{Attempts: attempts}
}
