package ui

import (
	"estatedash/internal/layout"
	"estatedash/internal/registry"
)

// SwitchLayoutMsg switches the workspace to a layout type (1-5, SPC l ...).
type SwitchLayoutMsg struct {
	Type layout.Type
}

// SelectLayoutMsg makes a built-in or saved layout current.
type SelectLayoutMsg struct {
	ID string
}

// PanelActionMsg dispatches a panel-level action. An empty PanelID targets
// the focused panel.
type PanelActionMsg struct {
	PanelID string
	Action  registry.Action
}

// ShowHiddenPanelsMsg makes every closed panel of the layout visible again.
type ShowHiddenPanelsMsg struct{}

// FocusMsg moves focus to the next (Delta 1) or previous (Delta -1) panel.
type FocusMsg struct {
	Delta int
}

// NudgePanelMsg moves or resizes the focused freeform panel by a percent
// delta. Used by the keyboard bindings that mirror mouse drag and resize.
type NudgePanelMsg struct {
	Rect layout.Rect
}

// ResetLayoutMsg reverts to the default layout (after confirmation).
type ResetLayoutMsg struct{}

// ShowResetConfirmMsg asks before resetting the layout.
type ShowResetConfirmMsg struct{}

// ShowLayoutPickerMsg opens the built-in and saved layout picker.
type ShowLayoutPickerMsg struct{}

// ShowSaveLayoutMsg prompts for a name to save the current layout under.
type ShowSaveLayoutMsg struct{}

// SaveLayoutMsg saves the current layout under Name.
type SaveLayoutMsg struct {
	Name string
}

// ShowImportLayoutMsg prompts for a TOML file to import.
type ShowImportLayoutMsg struct{}

// ImportLayoutMsg imports the layout file at Path.
type ImportLayoutMsg struct {
	Path string
}

// LayoutFileReadMsg carries an imported layout file's contents.
type LayoutFileReadMsg struct {
	Path string
	Data []byte
	Err  error
}

// ExportLayoutMsg writes the current layout to the export directory.
type ExportLayoutMsg struct{}

// ShowPresetPickerMsg opens the saved filter preset picker.
type ShowPresetPickerMsg struct{}

// LoadPresetMsg applies a saved filter preset.
type LoadPresetMsg struct {
	ID string
}

// ClearFiltersMsg clears every active filter.
type ClearFiltersMsg struct{}

// StatusMsg replaces the status line text.
type StatusMsg struct {
	Text string
	Err  bool
}

// DismissModalMsg is sent when user cancels a modal (Esc).
type DismissModalMsg struct{}
