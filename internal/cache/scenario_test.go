// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The scenarios below walk a six hour cache through the life of the box
// office buckets.

func TestScenario_DailyExpires(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[[]row](t, 6*time.Hour)
	daily := []row{{Rank: 1, Title: "X", Gross: "$1M"}}

	require.NoError(t, c.Set(ctx, "daily", daily))

	clk.Advance(time.Hour)
	got, ok, err := c.Get(ctx, "daily")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, daily, got)

	clk.Advance(6 * time.Hour)
	_, ok, err = c.Get(ctx, "daily")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScenario_DailyServedStaleOnOutage(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[[]row](t, 6*time.Hour)
	daily := []row{{Rank: 1, Title: "X", Gross: "$1M"}}

	require.NoError(t, c.Set(ctx, "daily", daily))
	clk.Advance(7 * time.Hour)

	got, err := c.GetOrFetch(ctx, "daily", failing[[]row](errors.New("503")))
	require.NoError(t, err)
	assert.Equal(t, daily, got)
}

func TestScenario_WeekendEmptyCacheRejects(t *testing.T) {
	c, _, _ := newTestCache[[]row](t, 6*time.Hour)

	timeout := errors.New("timeout")
	_, err := c.GetOrFetch(context.Background(), "weekend", failing[[]row](timeout))
	assert.Equal(t, timeout, err)
}

func TestScenario_WorldwideFetchThenHit(t *testing.T) {
	ctx := context.Background()
	c, _, clk := newTestCache[map[string]int](t, 6*time.Hour)

	got, err := c.GetOrFetch(ctx, "worldwide", func(context.Context) (map[string]int, error) {
		return map[string]int{"total": 500}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"total": 500}, got)

	clk.Advance(5 * time.Hour)
	got, ok, err := c.Get(ctx, "worldwide")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]int{"total": 500}, got)
}
