// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestNewThemeFor(t *testing.T) {
	theme := NewThemeFor(termenv.TrueColor, true)

	if !theme.IsDark || !theme.HasTrueColor {
		t.Errorf("capabilities not recorded: %+v", theme)
	}
	if theme.QuestionBubble.Render("hi") == "" {
		t.Error("QuestionBubble should render content")
	}
}

func TestGlamourStyle(t *testing.T) {
	tests := []struct {
		name    string
		profile termenv.Profile
		dark    bool
		want    string
	}{
		{"ascii", termenv.Ascii, true, "notty"},
		{"dark", termenv.ANSI256, true, "dark"},
		{"light", termenv.TrueColor, false, "light"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewThemeFor(tc.profile, tc.dark).GlamourStyle(); got != tc.want {
				t.Errorf("GlamourStyle() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBubbleWidth(t *testing.T) {
	theme := NewThemeFor(termenv.Ascii, false)

	tests := []struct {
		width int
		want  int
	}{
		{120, 90},
		{50, 46},
		{10, 20},
	}
	for _, tc := range tests {
		theme.SetSize(tc.width, 40)
		if got := theme.BubbleWidth(); got != tc.want {
			t.Errorf("BubbleWidth() at %d = %d, want %d", tc.width, got, tc.want)
		}
	}
}
