package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/modmill/modmill/pkg/modrinth"
)

var (
	pickSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	pickNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	pickDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// pickerModel is the bubbletea model for interactive search-result
// selection during `modmill add`.
type pickerModel struct {
	hits     []modrinth.Project
	cursor   int
	selected int // index into hits, -1 until chosen
	aborted  bool
}

func newPickerModel(hits []modrinth.Project) pickerModel {
	return pickerModel{hits: hits, selected: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.hits)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickDimStyle.Render("Select a mod (enter to confirm, q to skip)") + "\n\n"
	for i, h := range m.hits {
		line := fmt.Sprintf("%s  %s", h.Title, pickDimStyle.Render(h.Slug))
		if i == m.cursor {
			s += pickSelectedStyle.Render("> "+line) + "\n"
		} else {
			s += pickNormalStyle.Render("  "+line) + "\n"
		}
	}
	return s
}

// pickProject runs the interactive picker. The second return value is
// false when the user dismissed the list without choosing.
func pickProject(hits []modrinth.Project) (modrinth.Project, bool, error) {
	final, err := tea.NewProgram(newPickerModel(hits)).Run()
	if err != nil {
		return modrinth.Project{}, false, err
	}
	m := final.(pickerModel)
	if m.aborted || m.selected < 0 {
		return modrinth.Project{}, false, nil
	}
	return m.hits[m.selected], true, nil
}
