// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatai/internal/conversation"
	"github.com/jeranaias/chatai/internal/model"
	"github.com/jeranaias/chatai/internal/ui/chat"
	"github.com/jeranaias/chatai/internal/ui/styles"
)

// Prompt is printed before each question.
const Prompt = "> "

// =============================================================================
// INPUT
// =============================================================================

// LineReader reads one line of input per call. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// historyReader is implemented by readers that can load and save history.
type historyReader interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session runs the line-mode read loop against a controller.
type Session struct {
	ctrl        *conversation.Controller
	in          LineReader
	out         io.Writer
	echo        bool
	historyFile string
	profile     termenv.Profile
	style       string
	width       int

	mu       sync.Mutex
	markdown *glamour.TermRenderer

	answerLabel lipgloss.Style
	pending     lipgloss.Style
}

// Option configures a Session.
type Option func(*Session)

// WithReader replaces the liner input.
func WithReader(in LineReader) Option {
	return func(s *Session) { s.in = in }
}

// WithOutput sets where answers are printed.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// WithEcho prints each question back, for input that is not a terminal.
func WithEcho(echo bool) Option {
	return func(s *Session) { s.echo = echo }
}

// WithHistoryFile loads and saves input history at path.
func WithHistoryFile(path string) Option {
	return func(s *Session) { s.historyFile = path }
}

// WithColorProfile sets the output color profile. Ascii selects the
// plain-text markdown style.
func WithColorProfile(p termenv.Profile) Option {
	return func(s *Session) { s.profile = p }
}

// WithGlamourStyle sets the markdown style used on color terminals.
func WithGlamourStyle(style string) Option {
	return func(s *Session) { s.style = style }
}

// WithWidth sets the markdown wrap width.
func WithWidth(width int) Option {
	return func(s *Session) { s.width = width }
}

// NewSession creates a line-mode session. By default it reads with liner
// from stdin and prints to stdout.
func NewSession(ctrl *conversation.Controller, opts ...Option) *Session {
	if ctrl == nil {
		ctrl = conversation.New(nil)
	}
	s := &Session{
		ctrl:    ctrl,
		out:     os.Stdout,
		profile: termenv.Ascii,
		style:   "dark",
		width:   DefaultTerminalWidth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.in == nil {
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		s.in = line
	}
	if s.profile == termenv.Ascii {
		s.style = "notty"
	}

	r := lipgloss.NewRenderer(s.out)
	r.SetColorProfile(s.profile)
	s.answerLabel = r.NewStyle().Bold(true).Foreground(styles.Orange)
	s.pending = r.NewStyle().Foreground(styles.TextMuted)

	ctrl.Subscribe(s.onEvent)
	return s
}

// Run reads questions until EOF, Ctrl+C or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()
	s.loadHistory()

	if s.ctrl.Transcript().IsEmpty() {
		fmt.Fprintf(s.out, "%s\n%s\n\n", chat.WelcomeHeading, chat.WelcomeSubtitle)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := s.in.Prompt(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(input) == "" {
			continue
		}
		s.in.AppendHistory(input)

		if _, err := s.ctrl.Submit(ctx, input); err != nil && !errors.Is(err, conversation.ErrEmptyInput) {
			log.Printf("line mode: submit failed: %v", err)
		}
	}
}

// onEvent prints transcript changes as they happen.
func (s *Session) onEvent(ev conversation.Event) {
	switch {
	case ev.Message == nil && ev.Generating:
		fmt.Fprintln(s.out, s.pending.Render(chat.PendingText))
	case ev.Message == nil:
		// back to idle
	case ev.Message.IsQuestion():
		if s.echo {
			fmt.Fprintf(s.out, "%s%s\n", Prompt, ev.Message.Text())
		}
	case ev.Message.IsAnswer():
		s.printAnswer(ev.Message)
	}
}

func (s *Session) printAnswer(msg *model.Message) {
	fmt.Fprintf(s.out, "%s\n%s\n\n", s.answerLabel.Render(msg.Role().DisplayName()+":"), s.render(msg.Text()))
}

// render renders markdown, falling back to the raw text.
func (s *Session) render(content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markdown == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(s.style),
			glamour.WithColorProfile(s.profile),
			glamour.WithWordWrap(s.width),
		)
		if err != nil {
			log.Printf("markdown renderer unavailable: %v", err)
			return content
		}
		s.markdown = r
	}

	out, err := s.markdown.Render(content)
	if err != nil {
		return content
	}
	return trimLines(out)
}

// trimLines drops glamour's blank border lines and the padding it leaves
// at the end of each line.
func trimLines(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// HISTORY
// =============================================================================

func (s *Session) loadHistory() {
	h, ok := s.in.(historyReader)
	if !ok || s.historyFile == "" {
		return
	}
	if f, err := os.Open(s.historyFile); err == nil {
		_, _ = h.ReadHistory(f)
		f.Close()
	}
}

// saveHistory persists input history with owner-only permissions.
func (s *Session) saveHistory() {
	h, ok := s.in.(historyReader)
	if !ok || s.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(s.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = h.WriteHistory(f)
}

func (s *Session) close() {
	s.saveHistory()
	if err := s.in.Close(); err != nil {
		log.Printf("line mode: close input: %v", err)
	}
}
