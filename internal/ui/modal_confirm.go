package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModal asks for confirmation before a destructive action.
// Enter or y confirms; n dismisses. Push it with Dismiss "esc".
type ConfirmModal struct {
	Title     string
	Label     string
	Details   string // Optional warning details (e.g. "Saved panel positions are cleared")
	OnConfirm func() tea.Msg
}

// Ensure ConfirmModal implements View.
var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a confirmation modal.
func NewConfirmModal(title, label string, onConfirm func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{
		Title:     title,
		Label:     label,
		OnConfirm: onConfirm,
	}
}

// WithDetails adds warning details to the modal.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// NewResetLayoutConfirmModal confirms reverting to the default layout.
func NewResetLayoutConfirmModal() *ConfirmModal {
	return NewConfirmModal(
		"Reset layout?",
		"Switch back to the default layout",
		func() tea.Msg { return ResetLayoutMsg{} },
	).WithDetails("Panel positions, sizes and maximize state are cleared")
}

// Init implements View.
func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "n":
			return m, func() tea.Msg { return DismissModalMsg{} }
		case "enter", "y":
			if m.OnConfirm != nil {
				return m, m.OnConfirm
			}
		}
	}
	return m, nil
}

// View implements View.
func (m *ConfirmModal) View() string {
	content := Styles.TitleWarning.Render(m.Title) + "\n\n"
	content += Styles.Label.Render(m.Label)
	if m.Details != "" {
		content += "\n" + Styles.Details.Render(m.Details)
	}
	content += "\n\n" + Styles.Hint.Render("y/Enter: confirm  Esc: cancel")
	return Styles.BoxDanger.Render(content)
}
