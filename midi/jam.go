package midi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/rapidmidiex/chordstrainer/wsmsg"
	"github.com/sirupsen/logrus"
)

// JamSource follows the notes played in a remote RMX jam session.
type JamSource struct {
	// Websocket URL of the jam, e.g. wss://rmx.fly.dev/ws/jam/<id>.
	// http(s) schemes are rewritten to ws(s).
	URL    string
	Dialer *websocket.Dialer
}

func (j JamSource) Name() string { return j.URL }

// FromMIDIMsg converts an RMX MIDI message to an Event.
func FromMIDIMsg(msg wsmsg.MIDIMsg) Event {
	switch msg.State {
	case wsmsg.NOTE_ON:
		if msg.Velocity == 0 {
			return Event{Kind: NoteOff, Note: msg.Number}
		}
		return Event{Kind: NoteOn, Note: msg.Number}
	case wsmsg.NOTE_OFF:
		return Event{Kind: NoteOff, Note: msg.Number}
	}
	return Event{Kind: Other, Note: msg.Number}
}

func wsURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func (j JamSource) Listen(ctx context.Context, out chan<- Event) error {
	addr, err := wsURL(j.URL)
	if err != nil {
		return fmt.Errorf("jam url: %w", err)
	}
	dialer := j.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("jamConnect: %v: %w", addr, err)
	}
	defer ws.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-done:
		}
	}()

	log := logrus.WithField("source", addr)
	log.Info("connected")
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("jam closed")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var message wsmsg.Envelope
		if err := json.Unmarshal(data, &message); err != nil {
			log.WithError(err).Warn("dropping malformed message")
			continue
		}

		msg, ok, err := message.MIDI()
		if err != nil {
			log.WithError(err).Warnf("dropping message %s", message.ID)
			continue
		}
		if !ok {
			log.Debugf("ignoring %s message", message.Typ)
			continue
		}
		ev := FromMIDIMsg(msg)
		if ev.Kind == Other {
			continue
		}
		if !send(ctx, out, ev) {
			return nil
		}
	}
}
