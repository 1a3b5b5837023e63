package midi_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rapidmidiex/chordstrainer/midi"
	"github.com/rapidmidiex/chordstrainer/wsmsg"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestDecode(t *testing.T) {
	tt := []struct {
		name string
		msg  gomidi.Message
		want midi.Event
	}{
		{"note on", gomidi.NoteOn(0, 60, 100), midi.Event{Kind: midi.NoteOn, Note: 60}},
		{"note on other channel", gomidi.NoteOn(9, 21, 1), midi.Event{Kind: midi.NoteOn, Note: 21}},
		{"note off", gomidi.NoteOff(0, 64), midi.Event{Kind: midi.NoteOff, Note: 64}},
		{"zero velocity note on", gomidi.NoteOn(0, 67, 0), midi.Event{Kind: midi.NoteOff, Note: 67}},
		{"control change", gomidi.ControlChange(0, 64, 127), midi.Event{Kind: midi.Other}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, midi.Decode(tc.msg))
		})
	}
}

func TestFromMIDIMsg(t *testing.T) {
	require.Equal(t, midi.Event{Kind: midi.NoteOn, Note: 70},
		midi.FromMIDIMsg(wsmsg.MIDIMsg{State: wsmsg.NOTE_ON, Number: 70, Velocity: 127}))
	require.Equal(t, midi.Event{Kind: midi.NoteOff, Note: 70},
		midi.FromMIDIMsg(wsmsg.MIDIMsg{State: wsmsg.NOTE_ON, Number: 70, Velocity: 0}))
	require.Equal(t, midi.Event{Kind: midi.NoteOff, Note: 70},
		midi.FromMIDIMsg(wsmsg.MIDIMsg{State: wsmsg.NOTE_OFF, Number: 70}))
	require.Equal(t, midi.Other,
		midi.FromMIDIMsg(wsmsg.MIDIMsg{State: wsmsg.NoteState(7), Number: 70}).Kind)
}

// writeSMF encodes tracks and parses them back, the way a file on disk is read.
func writeSMF(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()
	s := smf.New()
	for _, tr := range tracks {
		require.NoError(t, s.Add(tr))
	}
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func aMajorTrack() smf.Track {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 21, 100))
	tr.Add(0, gomidi.NoteOn(0, 25, 100))
	tr.Add(0, gomidi.NoteOn(0, 28, 100))
	tr.Add(960, gomidi.NoteOff(0, 21))
	tr.Add(0, gomidi.NoteOff(0, 25))
	tr.Add(0, gomidi.NoteOff(0, 28))
	tr.Close(0)
	return tr
}

func TestTimeline(t *testing.T) {
	s, err := smf.ReadFrom(bytes.NewReader(writeSMF(t, aMajorTrack())))
	require.NoError(t, err)

	cues := midi.Timeline(s)
	require.Len(t, cues, 6)

	wantNotes := []int{21, 25, 28, 21, 25, 28}
	for i, c := range cues {
		require.Equal(t, wantNotes[i], c.Event.Note)
		if i < 3 {
			require.Equal(t, midi.NoteOn, c.Event.Kind)
			require.Zero(t, c.Offset)
		} else {
			require.Equal(t, midi.NoteOff, c.Event.Kind)
			require.Greater(t, c.Offset, time.Duration(0))
		}
	}
}

func TestTimelineReleasesBeforeStrikes(t *testing.T) {
	var strikes, releases smf.Track
	strikes.Add(0, gomidi.NoteOn(0, 60, 100))
	strikes.Add(480, gomidi.NoteOn(0, 62, 100))
	strikes.Close(0)
	releases.Add(480, gomidi.NoteOff(0, 60))
	releases.Close(0)

	s, err := smf.ReadFrom(bytes.NewReader(writeSMF(t, strikes, releases)))
	require.NoError(t, err)

	cues := midi.Timeline(s)
	require.Len(t, cues, 3)
	require.Equal(t, midi.Event{Kind: midi.NoteOn, Note: 60}, cues[0].Event)
	require.Equal(t, midi.Event{Kind: midi.NoteOff, Note: 60}, cues[1].Event)
	require.Equal(t, midi.Event{Kind: midi.NoteOn, Note: 62}, cues[2].Event)
	require.Equal(t, cues[1].Offset, cues[2].Offset)
}

func collect(t *testing.T, events <-chan midi.Event, n int) []midi.Event {
	t.Helper()
	var got []midi.Event
	timeout := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case ev := <-events:
			require.False(t, ev.At.IsZero(), "events are stamped")
			ev.At = time.Time{}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(got), n)
		}
	}
	return got
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amajor.mid")
	require.NoError(t, os.WriteFile(path, writeSMF(t, aMajorTrack()), 0o644))

	src := midi.FileSource{Path: path, Speed: 50}
	require.Equal(t, path, src.Name())

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan midi.Event)
	errc := make(chan error, 1)
	go func() { errc <- src.Listen(ctx, events) }()

	got := collect(t, events, 6)
	require.Equal(t, midi.Event{Kind: midi.NoteOn, Note: 21}, got[0])
	require.Equal(t, midi.Event{Kind: midi.NoteOff, Note: 28}, got[5])

	cancel()
	require.NoError(t, <-errc)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := midi.FileSource{Path: filepath.Join(t.TempDir(), "nope.mid")}
	err := src.Listen(context.Background(), make(chan midi.Event))
	require.Error(t, err)
}

func TestJamSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		text, _ := wsmsg.NewEnvelope(wsmsg.TEXT, uuid.New(), wsmsg.TextMsg{DisplayName: "bob", Body: "hi"})
		on, _ := wsmsg.NewEnvelope(wsmsg.MIDI, uuid.New(), wsmsg.MIDIMsg{State: wsmsg.NOTE_ON, Number: 60, Velocity: 90})
		off, _ := wsmsg.NewEnvelope(wsmsg.MIDI, uuid.New(), wsmsg.MIDIMsg{State: wsmsg.NOTE_OFF, Number: 60})

		_ = ws.WriteJSON(text)
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`))
		_ = ws.WriteJSON(on)
		_ = ws.WriteJSON(off)
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		// Wait for the client to hang up.
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	src := midi.JamSource{URL: srv.URL + "/jam/abc"}
	events := make(chan midi.Event)
	errc := make(chan error, 1)
	go func() { errc <- src.Listen(context.Background(), events) }()

	got := collect(t, events, 2)
	require.Equal(t, []midi.Event{
		{Kind: midi.NoteOn, Note: 60},
		{Kind: midi.NoteOff, Note: 60},
	}, got)

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("jam source did not stop on close")
	}
}

func TestJamSourceBadURL(t *testing.T) {
	src := midi.JamSource{URL: "ftp://example.com/jam"}
	err := src.Listen(context.Background(), make(chan midi.Event))
	require.Error(t, err)
}
