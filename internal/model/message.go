// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleQuestion Role = "question"
	RoleAnswer   Role = "answer"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleQuestion:
		return "You"
	case RoleAnswer:
		return "Chat AI"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the transcript. It is immutable once created:
// fields are only readable through accessors.
type Message struct {
	id        string
	role      Role
	text      string
	timestamp time.Time
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, text string) *Message {
	return &Message{
		id:        "msg_" + uuid.NewString(),
		role:      role,
		text:      text,
		timestamp: time.Now(),
	}
}

// NewQuestion creates a new question message.
func NewQuestion(text string) *Message {
	return NewMessage(RoleQuestion, text)
}

// NewAnswer creates a new answer message.
func NewAnswer(text string) *Message {
	return NewMessage(RoleAnswer, text)
}

// ID returns the message identifier.
func (m *Message) ID() string { return m.id }

// Role returns who produced the message.
func (m *Message) Role() Role { return m.role }

// Text returns the message content.
func (m *Message) Text() string { return m.text }

// Timestamp returns when the message was created.
func (m *Message) Timestamp() time.Time { return m.timestamp }

// IsQuestion reports whether the message was typed by the user.
func (m *Message) IsQuestion() bool { return m.role == RoleQuestion }

// IsAnswer reports whether the message came back from the model.
func (m *Message) IsAnswer() bool { return m.role == RoleAnswer }

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.text)
	if len(runes) <= maxLen {
		return m.text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
