package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"estatedash/internal/layout"
	"estatedash/internal/registry"

	tea "github.com/charmbracelet/bubbletea"
)

// sendMsg returns a command that emits msg.
func sendMsg(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// bindDefaults registers the application key bindings.
func bindDefaults(reg *KeybindRegistry) {
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("tab", sendMsg(FocusMsg{Delta: 1}), "Next panel")
	reg.BindWithDesc("shift+tab", sendMsg(FocusMsg{Delta: -1}), "Previous panel")
	reg.BindWithDesc("z", sendMsg(PanelActionMsg{Action: layout.ActionToggleMaximize}), "Zoom panel")
	for i, t := range layout.Types() {
		reg.BindWithDesc(fmt.Sprint(i+1), sendMsg(SwitchLayoutMsg{Type: t}), string(t))
	}

	reg.BindWithDesc("SPC q", tea.Quit, "Quit")

	reg.BindWithDesc("SPC l s", sendMsg(SwitchLayoutMsg{Type: layout.Single}), "Single")
	reg.BindWithDesc("SPC l d", sendMsg(SwitchLayoutMsg{Type: layout.Dual}), "Dual")
	reg.BindWithDesc("SPC l t", sendMsg(SwitchLayoutMsg{Type: layout.Tri}), "Tri")
	reg.BindWithDesc("SPC l q", sendMsg(SwitchLayoutMsg{Type: layout.Quad}), "Quad")
	reg.BindWithDesc("SPC l a", sendMsg(SwitchLayoutMsg{Type: layout.Advanced}), "Freeform")
	reg.BindWithDesc("SPC l p", sendMsg(ShowLayoutPickerMsg{}), "Pick layout")
	reg.BindWithDesc("SPC l w", sendMsg(ShowSaveLayoutMsg{}), "Save layout")
	reg.BindWithDesc("SPC l i", sendMsg(ShowImportLayoutMsg{}), "Import layout")
	reg.BindWithDesc("SPC l e", sendMsg(ExportLayoutMsg{}), "Export layout")
	reg.BindWithDesc("SPC l r", sendMsg(ShowResetConfirmMsg{}), "Reset layout")

	reg.BindWithDesc("SPC p m", sendMsg(PanelActionMsg{Action: layout.ActionMaximize}), "Maximize")
	reg.BindWithDesc("SPC p r", sendMsg(PanelActionMsg{Action: layout.ActionRestore}), "Restore")
	reg.BindWithDesc("SPC p c", sendMsg(PanelActionMsg{Action: layout.ActionClose}), "Close")
	reg.BindWithDesc("SPC p o", sendMsg(ShowHiddenPanelsMsg{}), "Show closed")

	reg.BindWithDesc("SPC f c", sendMsg(ClearFiltersMsg{}), "Clear filters")
	reg.BindWithDesc("SPC f p", sendMsg(ShowPresetPickerMsg{}), "Presets")

	freeform := []AppMode{ModeFreeform}
	nudges := []struct {
		key  string
		rect layout.Rect
		desc string
	}{
		{"h", layout.Rect{X: -nudgeStep}, "Move left"},
		{"l", layout.Rect{X: nudgeStep}, "Move right"},
		{"k", layout.Rect{Y: -nudgeStep}, "Move up"},
		{"j", layout.Rect{Y: nudgeStep}, "Move down"},
		{"H", layout.Rect{Width: -nudgeStep}, "Narrower"},
		{"L", layout.Rect{Width: nudgeStep}, "Wider"},
		{"K", layout.Rect{Height: -nudgeStep}, "Shorter"},
		{"J", layout.Rect{Height: nudgeStep}, "Taller"},
	}
	for _, n := range nudges {
		reg.BindWithDescForMode("SPC m "+n.key, sendMsg(NudgePanelMsg{Rect: n.rect}), n.desc, freeform)
	}
}

// nudgeStep is the percent a keyboard move or resize changes.
const nudgeStep = 5

// panelAction is the status text for a completed panel action.
func panelAction(title string, action registry.Action) string {
	return fmt.Sprintf("%s: %s", title, action)
}

// readLayoutFileCmd reads a layout document for import.
func readLayoutFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(expandHome(path))
		return LayoutFileReadMsg{Path: path, Data: data, Err: err}
	}
}

// writeLayoutFileCmd writes an exported layout document to dir and
// reports the path in the status line.
func writeLayoutFileCmd(dir string, cfg layout.LayoutConfig) tea.Cmd {
	return func() tea.Msg {
		data, err := layout.ExportTOML(cfg)
		if err != nil {
			return StatusMsg{Text: err.Error(), Err: true}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return StatusMsg{Text: fmt.Sprintf("export layout: %v", err), Err: true}
		}
		path := filepath.Join(dir, exportName(cfg)+".toml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return StatusMsg{Text: fmt.Sprintf("export layout: %v", err), Err: true}
		}
		return StatusMsg{Text: "exported " + path}
	}
}

// exportName derives a file name from a layout's name.
func exportName(cfg layout.LayoutConfig) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, cfg.Name)
	if name == "" {
		name = cfg.ID
	}
	return "layout-" + name
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
