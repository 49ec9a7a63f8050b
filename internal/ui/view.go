package ui

import tea "github.com/charmbracelet/bubbletea"

// View is a screen drawn over the workspace: the confirm, prompt and picker
// modals. Panels are not Views; they render through their registered content.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}
