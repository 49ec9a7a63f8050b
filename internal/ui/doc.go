// Package ui renders a workspace in the terminal with Bubble Tea.
//
// Core pieces:
//   - AppModel: root model; lays out panels, routes keys and mouse events
//   - FocusManager: tracks and rotates focus across mounted panels
//   - KeybindRegistry / KeyHandler: single keys and SPC leader sequences
//   - Pointer: maps mouse press/motion/release to drag and resize sessions
//   - canvas: paints (possibly overlapping) panel frames into one screen
//   - Overlay: modal views (pickers, prompts, confirmations) with a dismiss key
package ui
