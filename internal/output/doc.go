// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output filters, sorts and renders command results as text tables,
// JSON, YAML or raw bytes.
package output
