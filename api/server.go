package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"image/png"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"nameplate/app"
	"nameplate/events"
	"nameplate/theme"
)

// MaxBodyBytes bounds API request bodies and websocket messages.
const MaxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	App      *app.App
	WS       *WSConnectionManager
	Static   fs.FS
	Version  string
	AllowAll bool
	Logger   *log.Logger
}

type Server struct {
	app     *app.App
	ws      *WSConnectionManager
	themes  *theme.Handler
	static  fs.FS
	index   *template.Template
	version string
	logger  *log.Logger
	router  chi.Router

	upgrader websocket.Upgrader
}

// NewServer builds the router and starts forwarding bus events to connected
// browsers. Static must contain index.html.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ws := opts.WS
	if ws == nil {
		ws = NewWSConnectionManager()
	}

	s := &Server{
		app:     opts.App,
		ws:      ws,
		themes:  theme.NewHandler(opts.App.Themes),
		static:  opts.Static,
		version: opts.Version,
		logger:  logger.WithPrefix("api"),
	}

	if s.static != nil {
		indexHTML, err := fs.ReadFile(s.static, "index.html")
		if err != nil {
			return nil, fmt.Errorf("read index.html: %w", err)
		}
		s.index, err = template.New("index").Parse(string(indexHTML))
		if err != nil {
			return nil, fmt.Errorf("parse index.html: %w", err)
		}
	}

	if opts.AllowAll {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	s.router = s.buildRouter(opts.AllowAll)
	s.forwardEvents()
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter(allowAll bool) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Nameplate-Filename"},
		MaxAge:         300,
	}
	if allowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/", s.handleIndex)
	if s.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
	}
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.RequestSize(MaxBodyBytes))

		r.Get("/health", s.handleHealth)
		r.Get("/state", s.handleState)

		r.Get("/themes", s.themes.HandleThemes)
		r.Post("/themes/switch", s.themes.HandleSwitch)
		r.Get("/themes/css", s.themes.HandleCSS)

		r.Get("/name", s.handleGetName)
		r.Post("/name", s.handleSetName)
		r.Post("/name/blur", s.handleBlurName)
		r.Post("/keys", s.handleKey)

		r.Get("/pages", s.handlePages)
		r.Get("/pages/{n}", s.handlePage)
		r.Get("/frame", s.handleFrame)

		r.Post("/export", s.handleExport)
		r.Post("/capture", s.handleCapture)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		http.NotFound(w, r)
		return
	}

	current, _ := s.app.Themes.Current()
	banner, _ := s.app.Banner()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.index.Execute(w, map[string]any{
		"Title":         "Nameplate",
		"ThemeMenuHTML": template.HTML(s.themes.GenerateThemeMenuHTML(current.ID)),
		"CurrentTheme":  current.ID,
		"ThemeClass":    current.Class(),
		"Name":          s.app.State.Name(),
		"Banner":        banner.Message,
		"AppVersion":    s.version,
		"Year":          time.Now().Year(),
	})
	if err != nil {
		s.logger.Error("render index", "err", err)
	}
}

type stateResponse struct {
	Name     string   `json:"name"`
	Theme    string   `json:"theme"`
	Banner   string   `json:"banner,omitempty"`
	Document string   `json:"document,omitempty"`
	Pages    int      `json:"pages"`
	Capture  []string `json:"capture"`
	Clients  int      `json:"clients"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	current, _ := s.app.Themes.Current()
	banner, _ := s.app.Banner()

	kinds := s.app.Capture.Plan(r.Context())
	capture := make([]string, 0, len(kinds))
	for _, k := range kinds {
		capture = append(capture, k.String())
	}

	writeJSON(w, http.StatusOK, stateResponse{
		Name:     s.app.State.Name(),
		Theme:    current.ID,
		Banner:   banner.Message,
		Document: s.app.Pages.Source(),
		Pages:    len(s.app.Pages.Pages()),
		Capture:  capture,
		Clients:  s.ws.Count(),
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleGetName(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nameRequest{Name: s.app.State.Name()})
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, nameRequest{Name: s.app.State.SetName(req.Name)})
}

func (s *Server) handleBlurName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, nameRequest{Name: s.app.State.Blur(req.Name)})
}

type keyRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	handled, err := s.app.Keys.HandleKey(r.Context(), req.Key)
	if err != nil {
		writeNotice(w, app.NoticeFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"handled": handled})
}

type pageResponse struct {
	PageNumber    int     `json:"pageNumber"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	ViewportScale float64 `json:"viewportScale"`
	URL           string  `json:"url"`
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	entries := s.app.Pages.Pages()
	resp := make([]pageResponse, 0, len(entries))
	for _, p := range entries {
		resp = append(resp, pageResponse{
			PageNumber:    p.PageNumber,
			Width:         p.PixelWidth,
			Height:        p.PixelHeight,
			ViewportScale: p.ViewportScale,
			URL:           fmt.Sprintf("/api/pages/%d", p.PageNumber),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.Error(w, "invalid page number", http.StatusBadRequest)
		return
	}

	page, ok := s.app.Pages.Page(n)
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, page.Bitmap); err != nil {
		s.logger.Error("encode page", "page", n, "err", err)
		http.Error(w, "failed to encode page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if s.app.Frame == nil {
		http.Error(w, "frame not configured", http.StatusNotFound)
		return
	}
	img, err := s.app.Frame.Frame(r.Context())
	if err != nil {
		s.logger.Warn("load frame", "err", err)
		http.Error(w, "frame not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, "failed to encode frame", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req app.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.export(w, r, req)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req app.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Mode = app.ModeCapture
	s.export(w, r, req)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, req app.ExportRequest) {
	out, err := s.app.Export(r.Context(), req)
	if err != nil {
		writeNotice(w, app.NoticeFor(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.Header().Set("X-Nameplate-Filename", out.Filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.PNG)
}

// StatusFor maps a notice code to the HTTP status of the failed request.
func StatusFor(code string) int {
	switch code {
	case app.CodeNoCenteredPage, app.CodeFrameNotFound:
		return http.StatusUnprocessableEntity
	case app.CodeCaptureUnavailable, app.CodeDocumentLoad:
		return http.StatusServiceUnavailable
	case app.CodeInvalidRequest:
		return http.StatusBadRequest
	case app.CodeThemeNotFound:
		return http.StatusNotFound
	case app.CodeTransition:
		return http.StatusConflict
	case app.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// noticeBody is the JSON form of a notice, with its dismiss delay in
// milliseconds.
type noticeBody struct {
	events.Notice
	DismissMs int64 `json:"dismissMs,omitempty"`
}

func newNoticeBody(n events.Notice) noticeBody {
	return noticeBody{Notice: n, DismissMs: n.Dismiss.Milliseconds()}
}

func writeNotice(w http.ResponseWriter, n events.Notice) {
	writeJSON(w, StatusFor(n.Code), newNoticeBody(n))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("writeJSON", "err", err)
	}
}
