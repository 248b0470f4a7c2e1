// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for marquee. It wires flags,
// validators, actions, and shell completion for subcommands. Every query
// command reads through a cache.Cache, so a failed upstream call falls back
// to the last stored result with a warning on stderr.
package command
