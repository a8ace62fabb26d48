// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatai TUI.

All colors use Lip Gloss AdaptiveColor so the palette follows the
terminal's light or dark background.

# Color System (colors.go)

  - Orange - Brand color: header title, welcome heading
  - Amber  - Question bubbles
  - Slate  - Answer text and the pending indicator

# Theme (theme.go)

Theme detects terminal capabilities with termenv and exposes the composed
lipgloss styles used by the chat view and the line-mode front-end:

	theme := styles.NewTheme()
	theme.SetSize(width, height)
	bubble := theme.QuestionBubble.Render("Hello")

GlamourStyle returns the glamour standard style ("dark", "light" or
"notty") matching the detected background, so rendered markdown blends in.
*/
package styles
