// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// markdownRenderer wraps a glamour renderer and rebuilds it when the wrap
// width changes. It is only used from the update goroutine.
type markdownRenderer struct {
	style   string
	profile termenv.Profile
	width   int
	term    *glamour.TermRenderer
}

func newMarkdownRenderer(style string, profile termenv.Profile) *markdownRenderer {
	return &markdownRenderer{style: style, profile: profile}
}

// Render renders content wrapped at width. Returns the original content if
// the renderer is unavailable or fails.
func (r *markdownRenderer) Render(content string, width int) string {
	if width < 10 {
		width = 10
	}
	if r.term == nil || r.width != width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithColorProfile(r.profile),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Printf("markdown renderer unavailable: %v", err)
			r.term = nil
			return content
		}
		r.term = term
		r.width = width
	}

	rendered, err := r.term.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
