// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for chatai.
//
// Configuration is resolved once at startup; there are no command-line
// flags and nothing is written back.
//
// # Configuration Precedence
//
// Later sources override earlier ones:
//   - Built-in defaults
//   - ~/.chatai/config.toml
//   - .env in the working directory (never overrides variables already set)
//   - Environment variables (API_GENERATIVE_LANGUAGE_CLIENT, CHATAI_*)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := gemini.NewClient(cfg.API.Key, gemini.WithModel(cfg.API.Model))
package config
