// Package app wires the nameplate components together and owns the export
// pipeline shared by the HTTP API and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"nameplate/capture"
	"nameplate/compose"
	"nameplate/config"
	"nameplate/events"
	"nameplate/model"
	"nameplate/nameplate"
	"nameplate/pages"
	"nameplate/storage"
	"nameplate/theme"
	"nameplate/view"
)

// Export modes.
const (
	ModeCompose = "compose"
	ModeCapture = "capture"
)

var ErrUnknownMode = errors.New("unknown export mode")

// Options configures New. Zero fields get production defaults.
type Options struct {
	Config  config.Config
	Logger  *log.Logger
	Applier view.Applier

	Opener     pages.Opener
	Frame      compose.FrameSource
	Fonts      *compose.FontManager
	Strategies []capture.Strategy
	Themes     []theme.Theme
	ThemeOpts  []theme.Option
	Now        func() time.Time
}

// App is the application root.
type App struct {
	cfg    config.Config
	logger *log.Logger

	Bus        *events.Bus
	Themes     *theme.Manager
	Pages      *pages.Renderer
	Compositor *compose.Compositor
	Capture    *capture.Chain
	State      *nameplate.State
	Keys       *nameplate.Keymap
	Frame      compose.FrameSource

	// Archive keeps a copy of every export when archive_exports is set.
	Archive *storage.Store

	now func() time.Time

	mu     sync.Mutex
	banner *events.Banner
}

// ExportRequest is an export triggered from the UI.
type ExportRequest struct {
	Mode     string        `json:"mode"`
	Snapshot view.Snapshot `json:"snapshot"`
}

// Export is a finished export.
type Export struct {
	Filename   string `json:"filename"`
	Mode       string `json:"mode"`
	PageNumber int    `json:"pageNumber"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PNG        []byte `json:"-"`
}

// New builds every component. It does not load the document; see Start.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	applier := opts.Applier
	if applier == nil {
		applier = view.Discard{}
	}

	fonts := opts.Fonts
	if fonts == nil {
		var err error
		fonts, err = compose.NewFontManager(cfg.Resolve(cfg.FontPath), logger)
		if err != nil {
			return nil, fmt.Errorf("load display font: %w", err)
		}
	}

	frame := opts.Frame
	if frame == nil {
		frame = compose.NewFileFrame(cfg.Resolve(cfg.FrameImage))
	}

	opener := opts.Opener
	if opener == nil {
		opener = pages.PDFOpener{}
	}

	strategies := opts.Strategies
	if strategies == nil {
		strategies = []capture.Strategy{
			capture.NewBrowser(cfg.ChromePath, cfg.CaptureTimeout, logger),
			capture.NewRasterizer(fonts, logger),
		}
	}

	bus := events.New(logger)

	themes := opts.Themes
	if themes == nil {
		themes = theme.Builtin()
	}

	a := &App{
		cfg:        cfg,
		logger:     logger.WithPrefix("app"),
		Bus:        bus,
		Pages:      pages.NewRenderer(opener, logger),
		Compositor: compose.New(fonts, logger),
		Capture:    capture.NewChain(applier, cfg.CapturePadding, logger, strategies...),
		State:      nameplate.NewState(bus),
		Frame:      frame,
		now:        opts.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if cfg.ArchiveExports {
		a.Archive = storage.New(cfg.DataDir)
	}

	themeOpts := append([]theme.Option{
		theme.WithAssetLoader(theme.NewHTTPAssetLoader(cfg.DataDir)),
		theme.WithLogger(logger),
	}, opts.ThemeOpts...)
	a.Themes = theme.NewManager(bus, applier, themes, themeOpts...)
	a.Keys = nameplate.NewKeymap(a.State, a.Themes, bus, cfg.DefaultTheme, logger)

	bus.On(events.AppBanner, func(data any) {
		if b, ok := data.(events.Banner); ok {
			a.mu.Lock()
			a.banner = &b
			a.mu.Unlock()
		}
	})
	bus.On(events.ThemeError, func(data any) {
		if ev, ok := data.(theme.ErrorEvent); ok {
			bus.Emit(events.AppNotice, events.Notice{
				Kind:    events.NoticeError,
				Code:    "theme_error",
				Message: "Failed to switch to theme: " + ev.ThemeID,
				Dismiss: events.NoticeDuration,
			})
		}
	})

	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Start registers themes from the theme directory, applies the default theme
// and renders the document for the configured viewport. A document that
// cannot be loaded raises a banner and is returned as an error; the rest of
// the application keeps working.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.ThemeDir != "" {
		dir := a.cfg.Resolve(a.cfg.ThemeDir)
		extra, err := theme.LoadDir(os.DirFS(dir), ".", a.logger)
		if err != nil {
			a.logger.Warn("failed to load theme directory", "dir", dir, "err", err)
		}
		for _, t := range extra {
			_ = a.Themes.AddTheme(t)
		}
	}

	if err := a.Themes.SwitchTheme(ctx, a.cfg.DefaultTheme); err != nil {
		a.logger.Error("failed to apply default theme", "theme", a.cfg.DefaultTheme, "err", err)
	}

	vp := model.Viewport{
		Width:            a.cfg.ViewportWidth,
		Height:           a.cfg.ViewportHeight,
		DevicePixelRatio: a.cfg.DevicePixelRatio,
	}
	if err := a.Pages.Load(ctx, a.cfg.Resolve(a.cfg.Document), vp); err != nil {
		a.Bus.Emit(events.AppBanner, events.Banner{Message: "Unable to load the document. Please check the file path."})
		return err
	}

	a.Bus.Emit(events.AppReady, nil)
	return nil
}

// Banner returns the persistent error banner, if one was raised.
func (a *App) Banner() (events.Banner, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.banner == nil {
		return events.Banner{}, false
	}
	return *a.banner, true
}

// Resize records a new browser viewport.
func (a *App) Resize(vp model.Viewport) {
	a.Bus.Emit(events.WindowResize, vp)
}

// Export renders the page centered in the snapshot with the frame and the
// current name. ModeCompose (the default) draws it on the server; ModeCapture
// screenshots the displayed scene. The outcome is published as an
// events.ExportSuccess or events.ExportError notice.
func (a *App) Export(ctx context.Context, req ExportRequest) (*Export, error) {
	out, err := a.export(ctx, req)
	if err != nil {
		a.logger.Error("export failed", "mode", req.Mode, "err", err)
		a.Bus.Emit(events.ExportError, NoticeFor(err))
		return nil, err
	}

	a.logger.Info("nameplate exported", "file", out.Filename, "mode", out.Mode, "page", out.PageNumber)
	a.archive(out)
	a.Bus.Emit(events.ExportSuccess, events.Notice{
		Kind:     events.NoticeSuccess,
		Message:  "Nameplate exported successfully!",
		Dismiss:  events.NoticeDuration,
		Filename: out.Filename,
	})
	return out, nil
}

// archive failures are logged; the export itself already succeeded.
func (a *App) archive(out *Export) {
	if a.Archive == nil {
		return
	}
	current, _ := a.Themes.Current()
	path, err := a.Archive.SaveExport(&model.ExportRecord{
		Filename:   out.Filename,
		Name:       a.State.Name(),
		PageNumber: out.PageNumber,
		Width:      out.Width,
		Height:     out.Height,
		Mode:       out.Mode,
		Theme:      current.ID,
		Timestamp:  a.now(),
	}, out.PNG)
	if err != nil {
		a.logger.Warn("archive export", "file", out.Filename, "err", err)
		return
	}
	a.logger.Debug("export archived", "path", path)
}

func (a *App) export(ctx context.Context, req ExportRequest) (*Export, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeCompose
	}
	if mode != ModeCompose && mode != ModeCapture {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	snap := req.Snapshot
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	page, ok := a.Pages.Centered(snap.Container, snap.Pages)
	if !ok {
		return nil, compose.ErrNoCenteredPage
	}

	if !snap.FrameRect.Empty() {
		a.State.SetFrameGeometry(snap.FrameRect)
	}
	name := a.State.Name()

	out := &Export{
		Filename:   nameplate.Filename(name, a.now()),
		Mode:       mode,
		PageNumber: page.PageNumber,
	}

	switch mode {
	case ModeCapture:
		res, err := a.Capture.Capture(ctx, capture.Request{
			Snapshot: snap,
			URL:      a.cfg.AppURL,
			Scene:    capture.Scene{Page: page, Frame: a.Frame, Name: name},
		})
		if err != nil {
			return nil, err
		}
		out.PNG, out.Width, out.Height = res.PNG, res.Width, res.Height
	default:
		res, err := a.Compositor.Compose(ctx, compose.Request{
			Page:             page,
			CanvasRect:       snap.CanvasRect,
			FrameRect:        snap.FrameRect,
			Frame:            a.Frame,
			Name:             name,
			ExportFrameScale: a.cfg.ExportFrameScale,
		})
		if err != nil {
			return nil, err
		}
		out.PNG, out.Width, out.Height = res.PNG, res.Width, res.Height
	}

	return out, nil
}
