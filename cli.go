package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"nameplate/model"
	"nameplate/nameplate"
)

// parseRect parses "left,top,width,height". An empty string is the zero rect.
func parseRect(s string) (model.Rect, error) {
	if strings.TrimSpace(s) == "" {
		return model.Rect{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Rect{}, fmt.Errorf("invalid rect %q: want left,top,width,height", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		v[i] = f
	}
	return model.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

// defaultFrameRect is where the web UI places the frame overlay: 60% of the
// canvas width at a 5:2 aspect ratio, centered.
func defaultFrameRect(canvas model.Rect) model.Rect {
	w := canvas.Width * 3 / 5
	h := w * 2 / 5
	cx, cy := canvas.Center()
	return model.Rect{Left: cx - w/2, Top: cy - h/2, Width: w, Height: h}
}

func nameplateFilename(name string, t time.Time) string {
	return nameplate.Filename(name, t)
}

// localURL is the address a headless browser on this host uses to reach
// the server listening on addr.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
