package ui

import (
	"strings"

	"estatedash/internal/ui/textutil"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Frames smaller than this are not drawn.
const (
	minFrameWidth  = 4
	minFrameHeight = 3
)

// frameChrome is the number of cells a frame takes from its panel: the
// border on each side and, vertically, the title row.
const (
	frameChromeX = 2
	frameChromeY = 3
)

// bodySize returns the content area of a w x h panel frame.
func bodySize(w, h int) (int, int) {
	return max(w-frameChromeX, 0), max(h-frameChromeY, 0)
}

// renderFrame draws a bordered w x h panel with a title row above body.
// Every line of the result is exactly w cells wide.
func renderFrame(title, badge, body string, w, h int, style lipgloss.Style) string {
	if w < minFrameWidth || h < minFrameHeight {
		return ""
	}
	innerW, innerH := w-frameChromeX, h-2

	head := textutil.Truncate(title, innerW)
	if badge != "" && textutil.VisualWidth(head)+len(badge)+1 <= innerW {
		head = textutil.PadRightVisual(head, innerW-len(badge)) + badge
	}
	lines := []string{Styles.Title.Render(head)}
	for _, line := range strings.Split(body, "\n") {
		if len(lines) == innerH {
			break
		}
		lines = append(lines, ansi.Truncate(line, innerW, ""))
	}

	return style.
		Width(innerW).
		Height(innerH).
		MaxWidth(w).
		MaxHeight(h).
		Render(strings.Join(lines, "\n"))
}
