// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/chatai/internal/gemini"
	"github.com/jeranaias/chatai/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is the controller's position in the turn state machine.
type State int

const (
	StateIdle       State = iota // Ready for a question
	StateGenerating              // Waiting for the completion of the current turn
)

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	default:
		return "unknown"
	}
}

// Errors returned by the controller.
var (
	// ErrEmptyInput is returned when the submitted text is blank.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy is returned when a turn is already in flight.
	ErrBusy = errors.New("a response is already being generated")

	// ErrNoTurn is returned when resolving a turn that is not in flight.
	ErrNoTurn = errors.New("turn is not in flight")
)

// Completer produces an answer for a prompt. The returned text is always
// displayable; a non-nil error explains why a fallback was used.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Turn is one in-flight question.
type Turn struct {
	ID       string
	Prompt   string
	Question *model.Message
}

// Snapshot is a consistent copy of the session state for rendering.
type Snapshot struct {
	Messages   []*model.Message
	State      State
	Generating bool
}

// Event is delivered to subscribers when the transcript or the state changes.
// Message is nil for pure state changes.
type Event struct {
	Message    *model.Message
	State      State
	Generating bool
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller orchestrates submissions against a Completer.
type Controller struct {
	client     Completer
	transcript *model.Transcript

	mu      sync.Mutex
	state   State
	current *Turn

	subMu     sync.Mutex
	listeners []func(Event)
}

// New creates a controller with an empty transcript.
func New(client Completer) *Controller {
	return NewWithTranscript(client, model.NewTranscript())
}

// NewWithTranscript creates a controller over an existing transcript.
func NewWithTranscript(client Completer, transcript *model.Transcript) *Controller {
	if transcript == nil {
		transcript = model.NewTranscript()
	}
	c := &Controller{
		client:     client,
		transcript: transcript,
		state:      StateIdle,
	}
	transcript.Subscribe(func(ev model.Event) {
		st := c.State()
		c.emit(Event{Message: ev.Message, State: st, Generating: st == StateGenerating})
	})
	return c
}

// Begin validates text and starts a turn: the state moves to Generating and
// the question is appended. Blank text returns ErrEmptyInput and a second
// call while generating returns ErrBusy; neither changes anything.
func (c *Controller) Begin(text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	question := model.NewQuestion(text)
	turn := &Turn{
		ID:       uuid.NewString(),
		Prompt:   text,
		Question: question,
	}
	c.state = StateGenerating
	c.current = turn
	c.mu.Unlock()

	// The question precedes the pending state so observers render the
	// indicator after it.
	c.transcript.Append(question)
	c.emit(Event{State: StateGenerating, Generating: true})
	return turn, nil
}

// Complete asks the client for an answer to turn. It does not change the
// controller state and is safe to call from a background goroutine. Failures
// are logged and replaced by the client's fallback text.
func (c *Controller) Complete(ctx context.Context, turn *Turn) string {
	if turn == nil {
		return ""
	}
	if c.client == nil {
		log.Printf("turn %s: no completion client configured", turn.ID)
		return gemini.FallbackError
	}

	answer, err := c.client.Complete(ctx, turn.Prompt)
	if err != nil {
		log.Printf("turn %s: completion failed: %v", turn.ID, err)
	}
	if answer == "" {
		answer = gemini.FallbackError
	}
	return answer
}

// Resolve appends the answer for turn and returns to Idle. A turn that is
// not the one in flight is discarded with ErrNoTurn.
func (c *Controller) Resolve(turn *Turn, answer string) (*model.Message, error) {
	c.mu.Lock()
	if turn == nil || c.current == nil || c.current.ID != turn.ID {
		c.mu.Unlock()
		return nil, ErrNoTurn
	}
	// Claim the turn; state stays Generating until the answer is appended
	// so no new question can slip in between a question and its answer.
	c.current = nil
	msg := model.NewAnswer(answer)
	c.mu.Unlock()

	c.transcript.Append(msg)

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	c.emit(Event{State: StateIdle, Generating: false})
	return msg, nil
}

// Submit runs a whole turn synchronously and returns the answer message.
func (c *Controller) Submit(ctx context.Context, text string) (*model.Message, error) {
	turn, err := c.Begin(text)
	if err != nil {
		return nil, err
	}
	return c.Resolve(turn, c.Complete(ctx, turn))
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsGenerating reports whether a turn is in flight.
func (c *Controller) IsGenerating() bool {
	return c.State() == StateGenerating
}

// Transcript returns the underlying transcript.
func (c *Controller) Transcript() *model.Transcript {
	return c.transcript
}

// Snapshot returns a consistent copy of the session state.
func (c *Controller) Snapshot() Snapshot {
	st := c.State()
	return Snapshot{
		Messages:   c.transcript.Messages(),
		State:      st,
		Generating: st == StateGenerating,
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn for transcript appends and state changes.
// Listeners run synchronously on the goroutine that caused the change.
func (c *Controller) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	c.subMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.subMu.Unlock()
}

func (c *Controller) emit(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), len(c.listeners))
	copy(fns, c.listeners)
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

