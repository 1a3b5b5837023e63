// Package pickerui lets the user choose where notes come from: a MIDI input
// port or the virtual keyboard.
package pickerui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rapidmidiex/chordstrainer/keymap"
	"github.com/rapidmidiex/chordstrainer/rmxerr"
	"github.com/rapidmidiex/chordstrainer/styles"
	"golang.org/x/term"
)

// VirtualKeyboard is the row name of the qwerty piano.
const VirtualKeyboard = "Virtual keyboard"

type (
	// Lister returns the names of the MIDI input ports.
	Lister func() ([]string, error)

	portsMsg []string

	// Selected is sent when an input is chosen. Port is empty for the
	// virtual keyboard.
	Selected struct {
		Port    string
		Virtual bool
	}

	Model struct {
		list    Lister
		ports   []string
		table   table.Model
		help    help.Model
		loading bool
		err     error
	}
)

func New(list Lister) Model {
	return Model{
		list:    list,
		table:   makeInputTable(nil),
		help:    help.New(),
		loading: true,
	}
}

// Commands
func (m Model) listPorts() tea.Cmd {
	return func() tea.Msg {
		if m.list == nil {
			return portsMsg(nil)
		}
		ports, err := m.list()
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("list MIDI inputs: %w", err)}
		}
		return portsMsg(ports)
	}
}

func selectInput(sel Selected) tea.Cmd {
	return func() tea.Msg {
		return sel
	}
}

// Init is used to handle any initial I/O
func (m Model) Init() tea.Cmd {
	return m.listPorts()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width - 10)
	case rmxerr.ErrMsg:
		m.err = msg
		m.loading = false
	case portsMsg:
		m.ports = msg
		m.table = makeInputTable(m.ports)
		m.loading = false
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.Select):
			cmds = append(cmds, selectInput(m.Selection()))
		case msg.String() == "r":
			m.loading = true
			m.err = nil
			cmds = append(cmds, m.listPorts())
		}
	}
	newTable, tCmd := m.table.Update(msg)
	m.table = newTable

	cmds = append(cmds, tCmd)
	return m, tea.Batch(cmds...)
}

// Selection returns the input under the cursor.
func (m Model) Selection() Selected {
	i := m.table.Cursor()
	if i >= 0 && i < len(m.ports) {
		return Selected{Port: m.ports[i]}
	}
	return Selected{Virtual: true}
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	docStyle := styles.DocStyle
	if physicalWidth > 0 {
		docStyle = docStyle.MaxWidth(physicalWidth)
	}

	doc := strings.Builder{}
	doc.WriteString(styles.BoldStyle.Render("Choose an input") + "\n\n")
	doc.WriteString(styles.BaseStyle.Width(styles.Width).Render(m.table.View()))
	if m.loading {
		doc.WriteString("\n" + styles.MessageText.Render("Looking for MIDI inputs..."))
	} else if len(m.ports) == 0 {
		doc.WriteString("\n" + styles.MessageText.Render("No MIDI inputs found. Press r to look again."))
	}
	if m.err != nil {
		doc.WriteString("\n" + styles.RenderError(m.err.Error()))
	}
	doc.WriteString("\n" + styles.HelpMenu.Render(m.help.View(keymap.DefaultMapping)))

	return docStyle.Render(doc.String())
}

// The virtual keyboard is always the last row.
func makeInputTable(ports []string) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Input", Width: 40},
		{Title: "Kind", Width: 10},
	}

	rows := make([]table.Row, 0, len(ports)+1)
	for i, p := range ports {
		rows = append(rows, table.Row{fmt.Sprintf("%d", i), p, "port"})
	}
	rows = append(rows, table.Row{fmt.Sprintf("%d", len(ports)), VirtualKeyboard, "qwerty"})

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(7),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}
