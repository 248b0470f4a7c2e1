// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package differ renders the difference between two JSON documents, such as
// a cached payload and its freshly fetched replacement.
package differ

import (
	"encoding/json"
	"fmt"

	gojsondiff "github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Result is the outcome of a comparison.
type Result struct {
	Changed bool
	// Text is an ascii rendering of the left document annotated with
	// +/- markers. Empty when nothing changed.
	Text string
}

// Diff compares two JSON documents. Arrays are compared element-wise and
// objects key-wise; documents of different shapes are compared as a single
// "value" field.
func Diff(left, right []byte, color bool) (Result, error) {
	var l, r any
	if err := json.Unmarshal(left, &l); err != nil {
		return Result{}, fmt.Errorf("failed to parse left document: %w", err)
	}
	if err := json.Unmarshal(right, &r); err != nil {
		return Result{}, fmt.Errorf("failed to parse right document: %w", err)
	}

	var (
		d    gojsondiff.Diff
		base any
	)
	la, lok := l.([]any)
	ra, rok := r.([]any)
	lm, lmok := l.(map[string]any)
	rm, rmok := r.(map[string]any)

	switch {
	case lok && rok:
		d = gojsondiff.New().CompareArrays(la, ra)
		base = la
	case lmok && rmok:
		d = gojsondiff.New().CompareObjects(lm, rm)
		base = lm
	default:
		lw := map[string]any{"value": l}
		d = gojsondiff.New().CompareObjects(lw, map[string]any{"value": r})
		base = lw
	}

	if !d.Modified() {
		return Result{}, nil
	}

	f := formatter.NewAsciiFormatter(base, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	text, err := f.Format(d)
	if err != nil {
		return Result{}, fmt.Errorf("failed to format diff: %w", err)
	}
	return Result{Changed: true, Text: text}, nil
}
