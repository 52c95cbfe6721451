// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true)

	// Footer / help line styles
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpKeyStyle = lipgloss.NewStyle().
			Inherit(helpStyle).
			Foreground(lipgloss.Color("39"))
)
