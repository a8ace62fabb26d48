// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatai/internal/conversation"
	"github.com/jeranaias/chatai/internal/ui/styles"
)

// Default texts shown by the view.
const (
	DefaultTitle    = "Chat AI"
	Placeholder     = "Ask anything..."
	WelcomeHeading  = "Welcome to Chat AI! 👋"
	WelcomeSubtitle = "Ask me anything and I'll try my best to help."
	PendingText     = "..."
)

// Layout constants. The viewport takes whatever height is left.
const (
	inputHeight   = 3
	minViewHeight = 3
)

// =============================================================================
// MESSAGES
// =============================================================================

// completionMsg carries the answer for a turn back to the update loop.
type completionMsg struct {
	turn   *conversation.Turn
	answer string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl  *conversation.Controller
	ctx   context.Context
	theme *styles.Theme
	title string

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	markdown *markdownRenderer
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(m *Model) {
		if title != "" {
			m.title = title
		}
	}
}

// WithContext sets the context passed to completions.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// New creates a chat model driven by ctrl.
func New(ctrl *conversation.Controller, theme *styles.Theme, opts ...Option) Model {
	if ctrl == nil {
		ctrl = conversation.New(nil)
	}
	if theme == nil {
		theme = styles.NewTheme()
	}

	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.FocusedStyle.CursorLine = ta.FocusedStyle.CursorLine.UnsetBackground()

	keys := DefaultKeyMap()
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	m := Model{
		ctrl:     ctrl,
		ctx:      context.Background(),
		theme:    theme,
		title:    DefaultTitle,
		input:    ta,
		spinner:  newSpinner(theme),
		help:     help.New(),
		keys:     keys,
		markdown: newMarkdownRenderer(theme.GlamourStyle(), theme.ColorProfile),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// newSpinner returns a spinner with a fresh ID, so ticks scheduled for an
// earlier one are dropped by its Update.
func newSpinner(theme *styles.Theme) spinner.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.Pending.UnsetBackground().UnsetPadding()
	return sp
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// =============================================================================
// GETTERS
// =============================================================================

// Controller returns the controller driving the view.
func (m Model) Controller() *conversation.Controller {
	return m.ctrl
}

// InputValue returns the text currently in the input box.
func (m Model) InputValue() string {
	return m.input.Value()
}

// Title returns the header title.
func (m Model) Title() string {
	return m.title
}
