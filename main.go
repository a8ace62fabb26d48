// chatai - A terminal chat client for the generative-language API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatai/internal/cli"
	"github.com/jeranaias/chatai/internal/config"
	"github.com/jeranaias/chatai/internal/conversation"
	"github.com/jeranaias/chatai/internal/gemini"
	"github.com/jeranaias/chatai/internal/ui/chat"
	"github.com/jeranaias/chatai/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the application and returns once the front-end exits, so the
// deferred log close always runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	tui := cli.ShouldUseTUI()

	logFile, err := openLog(cfg.Log.File, tui)
	if err != nil {
		// Logging must never draw over the UI.
		log.SetOutput(io.Discard)
	} else {
		defer logFile.Close()
	}
	log.Printf("chatai %s (%s) starting", Version, GitCommit)

	client := gemini.NewClient(cfg.API.Key,
		gemini.WithBaseURL(cfg.API.BaseURL),
		gemini.WithModel(cfg.API.Model),
		gemini.WithUserAgent("chatai/"+Version),
	)
	if !client.IsConfigured() {
		log.Printf("warning: no API key configured; set %s or %s", config.EnvChatAIKey, config.EnvAPIKey)
	}
	log.Printf("model %s at %s, key %s", client.Model(), client.BaseURL(), client.MaskedKey())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := conversation.New(client)
	if tui {
		return runTUI(ctx, ctrl)
	}
	return runLineMode(ctx, ctrl)
}

// runTUI runs the full-screen chat view.
func runTUI(ctx context.Context, ctrl *conversation.Controller) error {
	cfg := config.Global()
	theme := styles.NewTheme()
	m := chat.New(ctrl, theme, chat.WithTitle(cfg.UI.Title), chat.WithContext(ctx))

	p := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running chatai: %w", err)
	}
	return nil
}

// runLineMode runs the line-oriented front-end for pipes and dumb terminals.
func runLineMode(ctx context.Context, ctrl *conversation.Controller) error {
	opts := []cli.Option{
		cli.WithEcho(!cli.IsTTY()),
		cli.WithColorProfile(cli.GetColorProfile()),
		cli.WithWidth(cli.GetTerminalWidth()),
		cli.WithGlamourStyle(styles.NewTheme().GlamourStyle()),
	}
	if dir, err := config.ConfigDir(); err == nil {
		opts = append(opts, cli.WithHistoryFile(filepath.Join(dir, "history")))
	}
	return cli.NewSession(ctrl, opts...).Run(ctx)
}

// openLog redirects the standard logger to path. The full-screen view uses
// tea.LogToFile so nothing is written to the terminal.
func openLog(path string, tui bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if tui {
		return tea.LogToFile(path, "chatai")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetPrefix("chatai ")
	return f, nil
}
