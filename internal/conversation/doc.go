// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation orchestrates a chat session.
//
// The Controller owns the transcript and a two-state machine:
//
//	Idle --Begin(text)--> Generating --Resolve(answer)--> Idle
//
// Begin rejects empty input and any submission while a turn is in flight,
// so at most one completion is outstanding and every answer lands directly
// after its question. Complete runs the remote call and never fails: it
// returns either the answer or a fallback text.
//
// Front-ends either call Submit (synchronous) or split the turn so the
// network call runs off their event loop:
//
//	turn, err := ctrl.Begin(input)
//	if err != nil {
//	    return // empty input or busy
//	}
//	answer := ctrl.Complete(ctx, turn)
//	ctrl.Resolve(turn, answer)
package conversation
