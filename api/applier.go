package api

import "nameplate/view"

// viewMessage instructs connected browsers to change the displayed document.
type viewMessage struct {
	Type       string            `json:"type"`
	Op         string            `json:"op"`
	Class      string            `json:"class,omitempty"`
	Selectors  []string          `json:"selectors,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// BroadcastApplier applies view changes on every connected browser.
type BroadcastApplier struct {
	ws *WSConnectionManager
}

var _ view.Applier = (*BroadcastApplier)(nil)

// NewBroadcastApplier returns an applier writing to the clients of ws.
func NewBroadcastApplier(ws *WSConnectionManager) *BroadcastApplier {
	return &BroadcastApplier{ws: ws}
}

func (a *BroadcastApplier) send(m viewMessage) error {
	m.Type = "view"
	a.ws.Broadcast(m)
	return nil
}

func (a *BroadcastApplier) SetProperties(props map[string]string) error {
	return a.send(viewMessage{Op: "setProperties", Properties: props})
}

func (a *BroadcastApplier) AddClass(class string) error {
	return a.send(viewMessage{Op: "addClass", Class: class})
}

func (a *BroadcastApplier) RemoveClass(class string) error {
	return a.send(viewMessage{Op: "removeClass", Class: class})
}

func (a *BroadcastApplier) Hide(selectors ...string) error {
	return a.send(viewMessage{Op: "hide", Selectors: selectors})
}

func (a *BroadcastApplier) Show(selectors ...string) error {
	return a.send(viewMessage{Op: "show", Selectors: selectors})
}
