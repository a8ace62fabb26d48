// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for chatai.

The view is a Bubble Tea model over a conversation.Controller. It never
mutates the transcript directly: Enter calls Controller.Begin, the
completion runs in a tea.Cmd, and the resulting message is handed back to
Controller.Resolve on the update goroutine.

# Layout

	+----------------------------------+
	|             Chat AI              |  header
	+----------------------------------+
	|  welcome panel or transcript     |  viewport
	|                     [question]   |
	|  answer (markdown)               |
	|  ... (spinner)                   |  pending block
	+----------------------------------+
	| Ask anything...                  |  textarea
	+----------------------------------+
	| enter send  alt+enter newline    |  help
	+----------------------------------+

# Files

  - model.go    - Model, construction, Init
  - update.go   - key handling, completion round trip, resize
  - view.go     - header, messages, welcome panel, pending block
  - keys.go     - key bindings (bubbles/key)
  - markdown.go - glamour renderer cached per width

The viewport is rebuilt and scrolled to the bottom on every transcript or
state change.
*/
package chat
