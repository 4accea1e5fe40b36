package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// MenuItem is one selectable option.
type MenuItem struct {
	Value string
	Label string
	Hint  string
}

// MenuModel is an immutable Bubbletea-compatible single-choice menu.
type MenuModel struct {
	title    string
	items    []MenuItem
	cursor   int
	chosen   bool
	quitting bool
}

// NewMenuModel creates a menu with the cursor on the first item.
func NewMenuModel(title string, items []MenuItem) MenuModel {
	return MenuModel{title: title, items: items}
}

// MoveDown returns a new model with the cursor moved down by one.
func (m MenuModel) MoveDown() MenuModel {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
	return m
}

// MoveUp returns a new model with the cursor moved up by one.
func (m MenuModel) MoveUp() MenuModel {
	if m.cursor > 0 {
		m.cursor--
	}
	return m
}

// Selected returns the highlighted item and whether the user confirmed it.
func (m MenuModel) Selected() (MenuItem, bool) {
	if len(m.items) == 0 || !m.chosen {
		return MenuItem{}, false
	}
	return m.items[m.cursor], true
}

func (m MenuModel) Init() tea.Cmd { return nil }

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		return m.MoveUp(), nil
	case "down", "j":
		return m.MoveDown(), nil
	case "enter":
		if len(m.items) > 0 {
			m.chosen = true
		}
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m MenuModel) View() string {
	if m.chosen || m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" " + Title(m.title) + "\n\n")
	for i, it := range m.items {
		prefix := "  "
		label := it.Label
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		sb.WriteString(fmt.Sprintf("%s%s", prefix, label))
		if it.Hint != "" {
			sb.WriteString(" " + Muted("("+it.Hint+")"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n " + Muted("↑/↓: navigate   enter: select   q: quit") + "\n")
	return sb.String()
}

// RunMenu shows the menu and returns the chosen item. ok is false when the user quit.
func RunMenu(title string, items []MenuItem, in io.Reader, out io.Writer) (MenuItem, bool, error) {
	final, err := tea.NewProgram(NewMenuModel(title, items), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return MenuItem{}, false, err
	}
	item, ok := final.(MenuModel).Selected()
	return item, ok, nil
}
