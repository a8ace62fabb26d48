// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Welcome panel
	WelcomeTitle lipgloss.Style
	WelcomeText  lipgloss.Style

	// Message blocks
	QuestionBubble lipgloss.Style
	AnswerBubble   lipgloss.Style
	Pending        lipgloss.Style

	// Input area
	InputBorder         lipgloss.Style
	InputBorderDisabled lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	return NewThemeFor(colorProfile, termenv.HasDarkBackground())
}

// NewThemeFor creates a theme for an explicit profile and background.
func NewThemeFor(profile termenv.Profile, isDark bool) *Theme {
	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1).
		Align(lipgloss.Center)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Orange)

	t.WelcomeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Orange).
		Align(lipgloss.Center)

	t.WelcomeText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Align(lipgloss.Center)

	t.QuestionBubble = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(AmberDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(0, 1)

	t.AnswerBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Pending = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(OrangeSoft).
		Padding(0, 1)

	t.InputBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Orange)

	t.InputBorderDisabled = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth returns the maximum width of a message block.
func (t *Theme) BubbleWidth() int {
	w := t.Width * 3 / 4
	if t.Width < 60 {
		w = t.Width - 4
	}
	if w < 20 {
		w = 20
	}
	return w
}

// GlamourStyle returns the glamour standard style name for this terminal.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}
