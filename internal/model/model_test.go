// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleQuestion, "You"},
		{RoleAnswer, "Chat AI"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		t.Run(tc.role.String(), func(t *testing.T) {
			if got := tc.role.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewMessage_Fields(t *testing.T) {
	q := NewQuestion("Hello")
	a := NewAnswer("Hi there")

	assert.True(t, q.IsQuestion())
	assert.False(t, q.IsAnswer())
	assert.Equal(t, "Hello", q.Text())
	assert.True(t, a.IsAnswer())
	assert.Equal(t, RoleAnswer, a.Role())

	assert.True(t, strings.HasPrefix(q.ID(), "msg_"))
	assert.NotEqual(t, q.ID(), a.ID(), "IDs must be unique")
	assert.False(t, q.Timestamp().IsZero())
}

func TestMessage_Preview(t *testing.T) {
	msg := NewQuestion("héllo wörld, this is long")

	assert.Equal(t, "héllo wörld, this is long", msg.Preview(100))
	assert.Equal(t, "héllo w...", msg.Preview(10))
	assert.Equal(t, "hé", msg.Preview(2))
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendPreservesOrder(t *testing.T) {
	tr := NewTranscript()
	require.True(t, tr.IsEmpty())
	require.Nil(t, tr.Last())

	q := NewQuestion("Hello")
	a := NewAnswer("Hi there")
	tr.Append(q)
	tr.Append(a)
	tr.Append(nil)

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Same(t, q, msgs[0])
	assert.Same(t, a, msgs[1])
	assert.Same(t, a, tr.Last())
	assert.Equal(t, 2, tr.Len())
}

func TestTranscript_MessagesReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewQuestion("one"))

	msgs := tr.Messages()
	msgs[0] = NewQuestion("mutated")
	_ = append(msgs, NewAnswer("extra"))

	assert.Equal(t, "one", tr.Messages()[0].Text())
	assert.Equal(t, 1, tr.Len())
}

func TestTranscript_SubscribeReceivesEvents(t *testing.T) {
	tr := NewTranscript()

	var order []string
	unsubA := tr.Subscribe(func(ev Event) {
		order = append(order, "a:"+ev.Message.Text())
		// Listeners may read the transcript; the lock is released.
		assert.Equal(t, ev.Len, tr.Len())
	})
	tr.Subscribe(func(ev Event) {
		order = append(order, "b:"+ev.Message.Text())
	})

	tr.Append(NewQuestion("1"))
	unsubA()
	unsubA() // idempotent
	tr.Append(NewAnswer("2"))

	assert.Equal(t, []string{"a:1", "b:1", "b:2"}, order)
}

func TestTranscript_SubscribeNil(t *testing.T) {
	tr := NewTranscript()
	unsub := tr.Subscribe(nil)
	require.NotNil(t, unsub)
	unsub()
	tr.Append(NewQuestion("still works"))
	assert.Equal(t, 1, tr.Len())
}

func TestTranscript_ConcurrentAppend(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Append(NewQuestion("q"))
			_ = tr.Messages()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Len())
}
