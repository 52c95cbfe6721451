// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// This file defines the keyboard bindings for the setup wizard and provides
// the descriptions shown in the help line.

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the setup wizard.
type KeyMap struct {
	Up       key.Binding // Previous field
	Down     key.Binding // Next field
	Tab      key.Binding // Next field
	ShiftTab key.Binding // Previous field
	Enter    key.Binding // Advance, submit on the last field
	Quit     key.Binding // Leave without saving
}

// DefaultKeyMap provides the default keybindings.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous field"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next field"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev field"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next/save"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit without saving"),
	),
}
