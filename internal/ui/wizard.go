// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The Parley Authors

// Package ui implements the interactive setup wizard behind `parley init`.
// It is a small Bubble Tea form that captures the authoring key, endpoint
// and default app/version ids and writes them to the persisted config file.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/config"
)

type wizardState int

const (
	stateEditing wizardState = iota
	stateSaving
	stateDone
	stateFailed
)

// Form field indices, in the order fields are shown and focused.
const (
	fieldAuthoringKey = iota
	fieldEndpoint
	fieldAppID
	fieldVersionID
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Authoring key (required)",
	"Endpoint (required)",
	"Default application id",
	"Default version id",
}

type wizard struct {
	inputs    []textinput.Model
	focus     int
	state     wizardState
	keymap    KeyMap
	err       error
	savedPath string
}

// --- Messages ---

type configSavedMsg struct{ path string }
type saveFailedMsg struct{ err error }

// --- Commands ---

func saveConfigCmd(f config.File) tea.Cmd {
	return func() tea.Msg {
		if err := config.Save(f); err != nil {
			return saveFailedMsg{err}
		}
		path, err := config.DefaultConfigPath()
		if err != nil {
			path = "config.yaml"
		}
		return configSavedMsg{path: path}
	}
}

// --- Form Creation ---

func createSetupForm(existing config.File) []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	var t textinput.Model

	t = textinput.New()
	t.Placeholder = "Authoring key"
	t.EchoMode = textinput.EchoPassword
	t.EchoCharacter = '*'
	t.SetValue(existing.AuthoringKey)
	t.Focus() // Initial focus
	t.CharLimit = 64
	t.Width = 40
	inputs[fieldAuthoringKey] = t

	t = textinput.New()
	t.Placeholder = "https://westus.api.nlu.example.com"
	t.SetValue(existing.Endpoint)
	t.CharLimit = 200
	t.Width = 60
	inputs[fieldEndpoint] = t

	t = textinput.New()
	t.Placeholder = "Application id (optional)"
	t.SetValue(existing.AppID)
	t.CharLimit = 64
	t.Width = 40
	inputs[fieldAppID] = t

	t = textinput.New()
	t.Placeholder = "Version id (optional, e.g. 0.1)"
	t.SetValue(existing.VersionID)
	t.CharLimit = 20
	t.Width = 20
	inputs[fieldVersionID] = t

	return inputs
}

// --- Form Processing ---

// buildFileFromForm creates a config.File from the form inputs. It performs
// basic validation; field-level correctness (a key the service accepts, a
// reachable endpoint) is only known once a command runs.
func (w *wizard) buildFileFromForm() (config.File, error) {
	f := config.File{}

	f.AuthoringKey = strings.TrimSpace(w.inputs[fieldAuthoringKey].Value())
	if f.AuthoringKey == "" {
		return f, fmt.Errorf("authoring key is required")
	}

	f.Endpoint = strings.TrimSpace(w.inputs[fieldEndpoint].Value())
	if f.Endpoint == "" {
		return f, fmt.Errorf("endpoint is required")
	}
	if !strings.HasPrefix(f.Endpoint, "http://") && !strings.HasPrefix(f.Endpoint, "https://") {
		return f, fmt.Errorf("endpoint must be an http(s) URL")
	}

	f.AppID = strings.TrimSpace(w.inputs[fieldAppID].Value())
	f.VersionID = strings.TrimSpace(w.inputs[fieldVersionID].Value())
	return f, nil
}

// --- Model Implementation ---

// InitialWizard builds the setup form, pre-filled from any existing config
// so re-running init edits rather than clobbers.
func InitialWizard() wizard {
	existing, err := config.Load()
	if err != nil {
		existing = config.File{}
	}
	return wizard{
		inputs: createSetupForm(existing),
		keymap: DefaultKeyMap,
	}
}

func (w wizard) Init() tea.Cmd {
	return textinput.Blink
}

func (w wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, w.keymap.Quit) {
			return w, tea.Quit
		}
		if w.state != stateEditing {
			if msg.Type == tea.KeyEnter {
				return w, tea.Quit
			}
			return w, nil
		}

		switch {
		case key.Matches(msg, w.keymap.Enter):
			if w.focus == fieldCount-1 {
				f, err := w.buildFileFromForm()
				if err != nil {
					w.err = err
					return w, nil
				}
				w.err = nil
				w.state = stateSaving
				return w, saveConfigCmd(f)
			}
			w.setFocus(w.focus + 1)
			return w, nil
		case key.Matches(msg, w.keymap.Tab), key.Matches(msg, w.keymap.Down):
			w.setFocus(w.focus + 1)
			return w, nil
		case key.Matches(msg, w.keymap.ShiftTab), key.Matches(msg, w.keymap.Up):
			w.setFocus(w.focus - 1)
			return w, nil
		}

	case configSavedMsg:
		w.state = stateDone
		w.savedPath = msg.path
		return w, tea.Quit

	case saveFailedMsg:
		w.state = stateFailed
		w.err = msg.err
		return w, tea.Quit
	}

	return w.updateInputs(msg)
}

// setFocus moves focus to the given field index, wrapping at both ends.
func (w *wizard) setFocus(index int) {
	if index < 0 {
		index = fieldCount - 1
	} else if index >= fieldCount {
		index = 0
	}
	w.inputs[w.focus].Blur()
	w.focus = index
	w.inputs[w.focus].Focus()
}

func (w wizard) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(w.inputs))
	for i := range w.inputs {
		w.inputs[i], cmds[i] = w.inputs[i].Update(msg)
	}
	return w, tea.Batch(cmds...)
}

func (w wizard) View() string {
	s := strings.Builder{}

	switch w.state {
	case stateSaving:
		return "Saving configuration...\n"
	case stateDone:
		return successStyle.Render("Configuration saved") + " to " + pathStyle.Render(w.savedPath) + "\n"
	case stateFailed:
		return errorStyle.Render(fmt.Sprintf("Failed to save configuration: %v", w.err)) + "\n"
	}

	s.WriteString(titleStyle.Render("parley setup") + "\n\n")

	for i := range w.inputs {
		cursor := "  "
		if w.focus == i {
			cursor = cursorStyle.Render("> ")
		}
		s.WriteString(cursor + labelStyle.Render(fieldLabels[i]) + "\n")
		s.WriteString("  " + w.inputs[i].View() + "\n\n")
	}

	if w.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", w.err)) + "\n\n")
	}

	help := strings.Builder{}
	help.WriteString(helpKeyStyle.Render(w.keymap.Tab.Help().Key) + helpStyle.Render(": "+w.keymap.Tab.Help().Desc+" | "))
	help.WriteString(helpKeyStyle.Render(w.keymap.Enter.Help().Key) + helpStyle.Render(": "+w.keymap.Enter.Help().Desc+" | "))
	help.WriteString(helpKeyStyle.Render(w.keymap.Quit.Help().Key) + helpStyle.Render(": "+w.keymap.Quit.Help().Desc))
	s.WriteString(help.String() + "\n")

	return s.String()
}

// RunWizard starts the interactive setup flow and blocks until it exits.
// Quitting without saving is not an error; a failed save is.
func RunWizard() error {
	p := tea.NewProgram(InitialWizard())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("setup wizard failed: %w", err)
	}
	if w, ok := final.(wizard); ok && w.state == stateFailed {
		return w.err
	}
	return nil
}
