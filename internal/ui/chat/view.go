// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/chatai/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderHelp(),
	)
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	width := max(m.width, 1)
	title := runewidth.Truncate(m.title, max(width-2, 1), "…")
	return m.theme.Header.Width(width).Render(m.theme.HeaderTitle.Render(title))
}

func (m Model) renderInput() string {
	border := m.theme.InputBorder
	if m.ctrl.IsGenerating() {
		border = m.theme.InputBorderDisabled
	}
	return border.Render(m.input.View())
}

func (m Model) renderHelp() string {
	return m.help.View(m.keys)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the welcome panel or the transcript followed by the
// pending block.
func (m Model) renderMessages() string {
	snap := m.ctrl.Snapshot()
	if len(snap.Messages) == 0 && !snap.Generating {
		return m.renderWelcome()
	}

	blocks := make([]string, 0, len(snap.Messages)+1)
	for _, msg := range snap.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if snap.Generating {
		blocks = append(blocks, m.renderPending())
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg *model.Message) string {
	if msg.IsQuestion() {
		return m.renderQuestion(msg)
	}
	return m.renderAnswer(msg)
}

// renderQuestion renders a right-aligned question bubble. Questions are shown
// as typed, without markdown.
func (m Model) renderQuestion(msg *model.Message) string {
	maxWidth := m.theme.BubbleWidth()
	bubble := m.theme.QuestionBubble
	// Width includes padding but not the border.
	if lipgloss.Width(msg.Text())+2 > maxWidth {
		bubble = bubble.Width(maxWidth)
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble.Render(msg.Text()))
}

// renderAnswer renders an answer as markdown inside a left-aligned bubble.
func (m Model) renderAnswer(msg *model.Message) string {
	bubble := m.theme.AnswerBubble
	body := m.markdown.Render(msg.Text(), m.theme.BubbleWidth()-bubble.GetHorizontalFrameSize())
	return bubble.Render(body)
}

func (m Model) renderPending() string {
	return m.theme.Pending.Render(m.spinner.View() + " " + PendingText)
}

func (m Model) renderWelcome() string {
	panel := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.WelcomeTitle.Render(WelcomeHeading),
		"",
		m.theme.WelcomeText.Render(WelcomeSubtitle),
	)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, panel)
}
