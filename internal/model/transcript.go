// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"slices"
	"sync"
)

// Event is delivered to subscribers after every append.
type Event struct {
	Message *Message
	Len     int // transcript length including Message
}

// Listener receives transcript events.
type Listener func(Event)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered history of a session. Messages are only ever
// appended; insertion order is chronological order. Nothing is persisted.
type Transcript struct {
	mu       sync.RWMutex
	messages []*Message

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSub   int
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{
		messages:  make([]*Message, 0, 16),
		listeners: make(map[int]Listener),
	}
}

// Append adds msg to the end of the transcript and notifies subscribers.
// Nil messages are ignored.
func (t *Transcript) Append(msg *Message) {
	if msg == nil {
		return
	}

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	n := len(t.messages)
	t.mu.Unlock()

	t.notify(Event{Message: msg, Len: n})
}

// Messages returns a copy of the ordered messages.
func (t *Transcript) Messages() []*Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// IsEmpty returns true if there are no messages.
func (t *Transcript) IsEmpty() bool {
	return t.Len() == 0
}

// Last returns the most recent message, or nil if empty.
func (t *Transcript) Last() *Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to be called after every append, in subscription
// order. The returned function removes the subscription.
func (t *Transcript) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.listeners[id] = fn
	t.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.listeners, id)
			t.subMu.Unlock()
		})
	}
}

// notify runs listeners outside the message lock so they may read the
// transcript.
func (t *Transcript) notify(ev Event) {
	t.subMu.Lock()
	ids := make([]int, 0, len(t.listeners))
	for id := range t.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, t.listeners[id])
	}
	t.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
