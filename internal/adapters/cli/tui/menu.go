package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	checkedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	uncheckedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// MenuOption represents a menu choice
type MenuOption struct {
	Label string
	Value string
	Hint  string // dimmed annotation after the label, e.g. "needs processing"
}

// MenuModel is the bubbletea model for a single-choice menu
type MenuModel struct {
	title    string
	options  []MenuOption
	cursor   int
	selected string
}

// NewMenuModel creates a new menu
func NewMenuModel(title string, options []MenuOption) MenuModel {
	return MenuModel{
		title:   title,
		options: options,
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.options[m.cursor].Value
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MenuModel) View() string {
	s := "? " + m.title + "\n\n"

	for i, opt := range m.options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		line := style.Render(opt.Label)
		if opt.Hint != "" {
			line += "  " + dimStyle.Render(opt.Hint)
		}
		s += fmt.Sprintf("%s%s\n", cursor, line)
	}

	s += "\n(up/down to navigate, enter to select, q to quit)\n"
	return s
}

// Selected returns the selected value
func (m MenuModel) Selected() string {
	return m.selected
}

// RunMenu displays the menu and returns the selection. An empty string
// means the user cancelled.
func RunMenu(title string, options []MenuOption) (string, error) {
	model := NewMenuModel(title, options)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	return finalModel.(MenuModel).Selected(), nil
}
