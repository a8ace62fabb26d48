// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// This package defines the core domain types shared by the controller and
// the front-ends: the messages exchanged in a session and the append-only
// transcript that holds them.
//
// # Key Types
//
//   - Role: who produced a message (Question or Answer)
//   - Message: immutable question or answer with ID and timestamp
//   - Transcript: ordered, append-only, in-memory message list with subscribers
//
// # Usage
//
//	t := model.NewTranscript()
//	unsubscribe := t.Subscribe(func(ev model.Event) {
//	    fmt.Println(ev.Message.Role(), ev.Message.Text())
//	})
//	defer unsubscribe()
//	t.Append(model.NewQuestion("Hello"))
package model
