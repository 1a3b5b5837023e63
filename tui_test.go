package chordstrainer_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/rapidmidiex/chordstrainer"
	"github.com/rapidmidiex/chordstrainer/chordui"
	"github.com/rapidmidiex/chordstrainer/config"
	"github.com/rapidmidiex/chordstrainer/pickerui"
	"github.com/rapidmidiex/chordstrainer/rmxerr"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Tier:      "basic",
		FPS:       100,
		FileSpeed: 1,
		Seed:      1,
		LogFile:   filepath.Join(t.TempDir(), "test.log"),
		LogLevel:  "info",
	}
}

func keys(s string) []tea.Msg {
	var out []tea.Msg
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return out
}

func TestVirtualKeyboardFlow(t *testing.T) {
	m, err := chordstrainer.NewModel(testConfig(t), nil)
	require.NoError(t, err)

	var model tea.Model = m
	require.Contains(t, model.View(), "Choose an input")

	model, _ = model.Update(pickerui.Selected{Virtual: true})
	require.Contains(t, model.View(), pickerui.VirtualKeyboard)

	// C E G on the home row.
	for _, k := range keys("adg") {
		model, _ = model.Update(k)
	}
	require.Eventually(t, func() bool {
		model, _ = model.Update(chordui.FrameMsg(time.Now()))
		return strings.Contains(model.View(), "C Major")
	}, time.Second, 5*time.Millisecond)

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	require.NotNil(t, cmd)
	model, _ = model.Update(chordui.LeaveMsg{})
	require.Contains(t, model.View(), "Choose an input")

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

func TestPortWithoutDriver(t *testing.T) {
	m, err := chordstrainer.NewModel(testConfig(t), nil)
	require.NoError(t, err)

	model, cmd := m.Update(pickerui.Selected{Port: "Keystation"})
	require.NotNil(t, cmd)
	require.Contains(t, model.View(), "Choose an input")

	cfg := testConfig(t)
	cfg.Port = "Keystation"
	_, err = chordstrainer.NewModel(cfg, nil)
	require.Error(t, err)
}

func TestConfiguredFileSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.File = filepath.Join(t.TempDir(), "missing.mid")

	m, err := chordstrainer.NewModel(cfg, nil)
	require.NoError(t, err)

	var model tea.Model = m
	require.Contains(t, model.View(), "missing.mid", "starts on the chord view")

	// The failing file surfaces as an error message.
	msg := waitFor(t, model.Init(), func(msg tea.Msg) bool {
		return strings.Contains(fmtMsg(msg), "sourceDoneMsg")
	})
	model, cmd := model.Update(msg)
	require.NotNil(t, cmd)
	errMsg := waitFor(t, cmd, func(msg tea.Msg) bool {
		_, ok := msg.(rmxerr.ErrMsg)
		return ok
	})
	model, _ = model.Update(errMsg)
	require.Contains(t, model.View(), "Error")
}

func fmtMsg(msg tea.Msg) string { return fmt.Sprintf("%T", msg) }

// waitFor runs cmd, following batches, and returns the first message
// matching ok.
func waitFor(t *testing.T, cmd tea.Cmd, ok func(tea.Msg) bool) tea.Msg {
	t.Helper()
	found := make(chan tea.Msg, 1)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		msg := c()
		if batch, isBatch := msg.(tea.BatchMsg); isBatch {
			for _, bc := range batch {
				go run(bc)
			}
			return
		}
		if ok(msg) {
			select {
			case found <- msg:
			default:
			}
		}
	}
	go run(cmd)

	select {
	case msg := <-found:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no matching message")
		return nil
	}
}
