// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the line-oriented front-end for chatai.
//
// Line mode is used when stdin or stdout is not a terminal. Each input line
// is one question; answers are printed through glamour as they arrive. The
// session prints from a controller subscription, so output follows the
// transcript rather than the read loop.
//
// Usage:
//
//	if cli.ShouldUseTUI() {
//	    // full-screen view
//	} else {
//	    s := cli.NewSession(ctrl, cli.WithHistoryFile(path))
//	    err := s.Run(ctx)
//	}
package cli
