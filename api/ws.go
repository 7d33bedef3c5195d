package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nameplate/events"
	"nameplate/model"
	"nameplate/pages"
)

// forwarded lists the bus events pushed to browsers.
var forwarded = []string{
	events.ThemeChanging,
	events.ThemeChanged,
	events.ThemeError,
	events.NameChanged,
	events.AppReady,
	events.AppReset,
	events.AppBanner,
	events.AppNotice,
	events.WindowResize,
	events.ExportSuccess,
	events.ExportError,
}

type eventMessage struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type helloMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Theme  string `json:"theme"`
	Banner string `json:"banner,omitempty"`
}

type snapMessage struct {
	Type string `json:"type"`
	pages.Snap
}

type scrollMessage struct {
	Type string  `json:"type"`
	Top  float64 `json:"top"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// clientMessage is anything a browser sends over the socket.
type clientMessage struct {
	Type string `json:"type"`

	// scroll
	Container model.ContainerMetrics `json:"container"`
	Pages     []model.PageMetrics    `json:"pages"`

	// key
	Key string `json:"key"`

	// name, blur
	Name string `json:"name"`

	// resize
	Viewport model.Viewport `json:"viewport"`

	// theme
	Theme string `json:"theme"`
}

func (s *Server) forwardEvents() {
	for _, name := range forwarded {
		s.app.Bus.On(name, func(data any) {
			if n, ok := data.(events.Notice); ok {
				data = newNoticeBody(n)
			}
			s.ws.Broadcast(eventMessage{Type: "event", Event: name, Data: data})
		})
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxBodyBytes)

	id := uuid.NewString()
	s.ws.Add(id, conn)
	defer s.ws.Remove(id)

	tracker := pages.NewScrollTracker(pages.SnapDebounce, func(snap pages.Snap) {
		if err := s.ws.WriteJSON(id, snapMessage{Type: "snap", Snap: snap}); err != nil {
			s.logger.Debug("snap not delivered", "conn", id, "err", err)
		}
	})
	defer tracker.Stop()

	current, _ := s.app.Themes.Current()
	banner, _ := s.app.Banner()
	if err := s.ws.WriteJSON(id, helloMessage{
		Type:   "hello",
		ID:     id,
		Name:   s.app.State.Name(),
		Theme:  current.ID,
		Banner: banner.Message,
	}); err != nil {
		return
	}

	s.logger.Debug("client connected", "conn", id, "clients", s.ws.Count())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "conn", id, "err", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = s.ws.WriteJSON(id, errorMessage{Type: "error", Message: "invalid json"})
			continue
		}
		if err := s.handleClientMessage(r.Context(), id, tracker, msg); err != nil {
			_ = s.ws.WriteJSON(id, errorMessage{Type: "error", Message: err.Error()})
		}
	}
}

func (s *Server) handleClientMessage(ctx context.Context, id string, tracker *pages.ScrollTracker, msg clientMessage) error {
	switch msg.Type {
	case "scroll":
		top := tracker.Report(pages.ScrollReport{Container: msg.Container, Pages: msg.Pages})
		if top != msg.Container.ScrollTop {
			return s.ws.WriteJSON(id, scrollMessage{Type: "scroll", Top: top})
		}
		return nil
	case "key":
		_, err := s.app.Keys.HandleKey(ctx, msg.Key)
		return err
	case "name":
		s.app.State.SetName(msg.Name)
		return nil
	case "blur":
		s.app.State.Blur(msg.Name)
		return nil
	case "resize":
		s.app.Resize(msg.Viewport)
		return nil
	case "theme":
		s.app.Bus.Emit(events.ThemeSwitch, msg.Theme)
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}
