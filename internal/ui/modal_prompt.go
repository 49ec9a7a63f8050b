package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModal asks for a single line of text. Push it with Dismiss "esc".
type PromptModal struct {
	title    string
	input    textinput.Model
	onSubmit func(value string) tea.Msg
}

// Ensure PromptModal implements View.
var _ View = (*PromptModal)(nil)

// NewPromptModal creates a prompt; onSubmit receives the trimmed,
// non-empty value.
func NewPromptModal(title, placeholder string, onSubmit func(string) tea.Msg) *PromptModal {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = 40
	ti.Focus()
	return &PromptModal{title: title, input: ti, onSubmit: onSubmit}
}

// NewSaveLayoutModal prompts for the name of a saved layout.
func NewSaveLayoutModal() *PromptModal {
	return NewPromptModal("Save layout", "layout name", func(name string) tea.Msg {
		return SaveLayoutMsg{Name: name}
	})
}

// NewImportLayoutModal prompts for a layout TOML file.
func NewImportLayoutModal() *PromptModal {
	return NewPromptModal("Import layout", "path/to/layout.toml", func(path string) tea.Msg {
		return ImportLayoutMsg{Path: path}
	})
}

// Value returns the current input.
func (m *PromptModal) Value() string {
	return m.input.Value()
}

// Init implements View.
func (m *PromptModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements View.
func (m *PromptModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		value := strings.TrimSpace(m.input.Value())
		if value == "" || m.onSubmit == nil {
			return m, nil
		}
		return m, func() tea.Msg { return m.onSubmit(value) }
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements View.
func (m *PromptModal) View() string {
	content := Styles.Title.Render(m.title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += Styles.Hint.Render("Enter: confirm  Esc: cancel")
	return Styles.Box.Render(content)
}
