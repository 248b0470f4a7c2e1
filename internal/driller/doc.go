// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller extracts values from result rows by path for the output
// and filter stages.
package driller
