package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubView struct {
	text string
	keys []string
}

func (v *stubView) Init() tea.Cmd { return nil }

func (v *stubView) Update(msg tea.Msg) (View, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		v.keys = append(v.keys, km.String())
	}
	return v, nil
}

func (v *stubView) View() string { return v.text }

func TestOverlayStack_TopReceivesKeys(t *testing.T) {
	var s OverlayStack
	bottom := &stubView{text: "bottom"}
	top := &stubView{text: "top"}
	s.Push(Overlay{View: bottom, Dismiss: "esc"})
	s.Push(Overlay{View: top, Dismiss: "esc"})

	_, handled := s.UpdateTop(keyMsg("x"))
	assert.True(t, handled)
	assert.Equal(t, []string{"x"}, top.keys)
	assert.Empty(t, bottom.keys)

	s.UpdateTop(keyMsg("esc"))
	require.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"x"}, top.keys, "the dismiss key is not forwarded")

	o, ok := s.Peek()
	require.True(t, ok)
	assert.Same(t, bottom, o.View)
}

func TestOverlayStack_Empty(t *testing.T) {
	var s OverlayStack
	_, handled := s.UpdateTop(keyMsg("x"))
	assert.False(t, handled)
	_, ok := s.Pop()
	assert.False(t, ok)
	assert.Empty(t, s.Render(10, 5))
}

func TestOverlayStack_RenderCentersTop(t *testing.T) {
	var s OverlayStack
	s.Push(Overlay{View: &stubView{text: "hi"}})

	out := s.Render(10, 5)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, 10, lipgloss.Width(lines[2]))
	assert.Equal(t, "hi", strings.TrimSpace(lines[2]))

	s.Clear()
	assert.Zero(t, s.Len())
}
