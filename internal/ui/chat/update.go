// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatai/internal/conversation"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case completionMsg:
		return m.handleCompletion(msg)

	case spinner.TickMsg:
		if !m.ctrl.IsGenerating() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a turn from the input box. Blank input and submissions
// while a response is pending are ignored and leave the input untouched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.ctrl.IsGenerating() {
		return m, nil
	}

	turn, err := m.ctrl.Begin(m.input.Value())
	if err != nil {
		if !errors.Is(err, conversation.ErrEmptyInput) {
			log.Printf("submit rejected: %v", err)
		}
		return m, nil
	}

	m.input.Reset()
	m.spinner = newSpinner(m.theme)
	m.refresh()
	return m, tea.Batch(m.completeCmd(turn), m.spinner.Tick)
}

// completeCmd runs the completion off the update goroutine.
func (m Model) completeCmd(turn *conversation.Turn) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return completionMsg{turn: turn, answer: ctrl.Complete(ctx, turn)}
	}
}

func (m Model) handleCompletion(msg completionMsg) (tea.Model, tea.Cmd) {
	if _, err := m.ctrl.Resolve(msg.turn, msg.answer); err != nil {
		log.Printf("discarding completion: %v", err)
		return m, nil
	}
	m.refresh()
	return m, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Input box border takes one column each side.
	m.input.SetWidth(max(msg.Width-2, 1))
	m.help.Width = msg.Width

	chrome := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderInput()) + lipgloss.Height(m.renderHelp())
	vpHeight := max(msg.Height-chrome, minViewHeight)

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.refresh()
	return m, nil
}

// updateViewport re-renders the transcript into the viewport.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
}

// refresh re-renders the transcript and scrolls to the latest message.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}
