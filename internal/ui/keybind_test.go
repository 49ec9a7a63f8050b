package ui

import (
	"testing"

	"estatedash/internal/layout"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeybindRegistry_BindLookup(t *testing.T) {
	reg := NewKeybindRegistry()
	bindDefaults(reg)
	reg.Bind("j", nil)

	for _, seq := range []string{"q", "z", "3", "SPC q", "SPC l a", "SPC p c", "SPC f p"} {
		if reg.Lookup(seq) == nil {
			t.Errorf("expected %q to be bound", seq)
		}
	}
	if reg.Lookup("j") != nil {
		t.Error("a nil binding should look up as unbound")
	}
	if reg.Lookup("unknown") != nil {
		t.Error("expected unknown to be unbound")
	}
	if reg.LookupForMode("SPC m h", ModeTiled) != nil {
		t.Error("panel nudges should not be bound in tiled layouts")
	}
	if reg.LookupForMode("SPC m h", ModeFreeform) == nil {
		t.Error("panel nudges should be bound in the freeform layout")
	}
}

func TestKeyHandler_LeaderKey(t *testing.T) {
	reg := NewKeybindRegistry()
	bindDefaults(reg)
	h := NewKeyHandler(reg)

	// Press space -> leader waiting (Bubble Tea reports space as " ")
	consumed, cmd := h.Handle(keyMsg(" "))
	if !consumed || cmd != nil {
		t.Errorf("space: consumed=%v cmd=%v", consumed, cmd)
	}
	if !h.LeaderWaiting {
		t.Error("expected leader waiting after space")
	}

	h.Handle(keyMsg("l"))
	consumed, cmd = h.Handle(keyMsg("w"))
	if !consumed {
		t.Errorf("w: expected consumed")
	}
	if h.LeaderWaiting {
		t.Error("leader should not be waiting after completing sequence")
	}
	if cmd == nil {
		t.Fatal("SPC l w: expected command")
	}
	if _, ok := cmd().(ShowSaveLayoutMsg); !ok {
		t.Errorf("SPC l w: expected ShowSaveLayoutMsg")
	}
}

func TestKeyHandler_EscCancelsLeader(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x", tea.Quit)
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "))
	if !h.LeaderWaiting {
		t.Fatal("expected leader waiting")
	}

	consumed, cmd := h.Handle(keyMsg("esc"))
	if !consumed || cmd != nil {
		t.Errorf("esc: consumed=%v cmd=%v", consumed, cmd)
	}
	if h.LeaderWaiting {
		t.Error("esc should cancel leader mode")
	}
}

func TestKeyHandler_SingleKey(t *testing.T) {
	reg := NewKeybindRegistry()
	bindDefaults(reg)
	h := NewKeyHandler(reg)

	consumed, cmd := h.Handle(keyMsg("z"))
	if !consumed || cmd == nil {
		t.Fatalf("z: consumed=%v cmd=%v", consumed, cmd)
	}
	msg, ok := cmd().(PanelActionMsg)
	if !ok || msg.Action != layout.ActionToggleMaximize || msg.PanelID != "" {
		t.Errorf("z: got %#v, want toggle-maximize of the focused panel", msg)
	}
}

func TestKeyHandler_UnboundFallsThrough(t *testing.T) {
	reg := NewKeybindRegistry()
	bindDefaults(reg)
	h := NewKeyHandler(reg)

	// Panel keys such as "right" and "j" belong to the focused panel.
	for _, k := range []string{"right", "j", "enter"} {
		if consumed, _ := h.Handle(keyMsg(k)); consumed {
			t.Errorf("unbound %q should not be consumed", k)
		}
	}
}

func TestKeybindRegistry_LeaderHintsByMode(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDesc("SPC l d", tea.Quit, "Dual")
	reg.BindWithDescForMode("SPC m h", tea.Quit, "Move left", []AppMode{ModeFreeform})

	tiled := reg.LeaderHints("", ModeTiled)
	if tiled["q"] != "Quit" || tiled["l"] != "Layout" {
		t.Errorf("tiled hints = %v", tiled)
	}
	if _, ok := tiled["m"]; ok {
		t.Errorf("freeform-only submenu shown in tiled mode: %v", tiled)
	}

	free := reg.LeaderHints("", ModeFreeform)
	if free["m"] != "Move" {
		t.Errorf("freeform hints = %v", free)
	}

	next := reg.LeaderHints("SPC l", ModeTiled)
	if len(next) != 1 || next["d"] != "Dual" {
		t.Errorf("SPC l hints = %v", next)
	}
}

func TestKeyHandler_NestedSequence(t *testing.T) {
	reg := NewKeybindRegistry()
	var ran string
	reg.Bind("SPC l a", func() tea.Msg { ran = "advanced"; return nil })
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "))
	consumed, cmd := h.Handle(keyMsg("l"))
	if !consumed || cmd != nil || !h.LeaderWaiting {
		t.Fatalf("SPC l: consumed=%v cmd=%v waiting=%v", consumed, cmd, h.LeaderWaiting)
	}
	_, cmd = h.Handle(keyMsg("a"))
	if cmd == nil {
		t.Fatal("SPC l a: expected command")
	}
	cmd()
	if ran != "advanced" {
		t.Errorf("ran = %q", ran)
	}

	// Unknown continuation leaves leader mode.
	h.Handle(keyMsg(" "))
	h.Handle(keyMsg("z"))
	if h.LeaderWaiting {
		t.Error("unknown sequence should end leader mode")
	}
}

func TestKeyHandler_ModeGatesBindings(t *testing.T) {
	reg := NewKeybindRegistry()
	var ran bool
	reg.BindWithDescForMode("SPC m h", func() tea.Msg { ran = true; return nil }, "Move left", []AppMode{ModeFreeform})
	reg.BindWithDescForMode("z", tea.Quit, "Zoom", []AppMode{ModeFreeform})
	h := NewKeyHandler(reg)

	if consumed, _ := h.Handle(keyMsg("z")); consumed {
		t.Error("freeform-only key consumed in tiled mode")
	}
	h.Handle(keyMsg(" "))
	h.Handle(keyMsg("m"))
	if h.LeaderWaiting {
		t.Error("SPC m has no tiled continuation and should end leader mode")
	}

	h.Mode = ModeFreeform
	h.Handle(keyMsg(" "))
	h.Handle(keyMsg("m"))
	_, cmd := h.Handle(keyMsg("h"))
	if cmd == nil {
		t.Fatal("SPC m h: expected command in freeform mode")
	}
	cmd()
	if !ran {
		t.Error("expected nudge command to run")
	}
}

// keyMsg creates a tea.KeyMsg for testing. Bubble Tea uses KeyType and Runes.
// KeySpace.String() returns " ", KeyEsc returns "esc", etc.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "q":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	case "x":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}
	case "j":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
