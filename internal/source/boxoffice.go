// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/staranto/marquee/internal/cache"
)

// DefaultBoxOfficeURL is the scrape API the box office buckets come from.
const DefaultBoxOfficeURL = "https://box-office-scrape-api.onrender.com"

// Bucket names one of the four box office charts.
type Bucket string

const (
	Worldwide Bucket = "worldwide"
	Domestic  Bucket = "domestic"
	Daily     Bucket = "daily"
	Weekend   Bucket = "weekend"
)

// Buckets lists every chart in display order.
var Buckets = []Bucket{Worldwide, Domestic, Daily, Weekend}

// ParseBucket accepts a bucket name or its cache key.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if strings.EqualFold(s, string(b)) || s == b.Key() {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown box office chart %q", s)
}

// Key is the cache key for the bucket.
func (b Bucket) Key() string { return string(b) + "BoxOffice" }

// Path is the endpoint path for the bucket.
func (b Bucket) Path() string { return "box-office/" + string(b) }

// Item is one row of a box office chart.
type Item struct {
	Rank          int    `json:"rank"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Gross         string `json:"gross"`
	DailyGross    string `json:"dailyGross,omitempty"`
	DaysInRelease int    `json:"daysInRelease,omitempty"`
	Date          string `json:"date,omitempty"`
}

// Summary is all four charts fetched together.
type Summary struct {
	Worldwide   []Item    `json:"worldwide"`
	Domestic    []Item    `json:"domestic"`
	Daily       []Item    `json:"daily"`
	Weekend     []Item    `json:"weekend"`
	LastUpdated time.Time `json:"lastUpdated"`
	// Stale names the charts that were served from expired entries.
	Stale []Bucket `json:"stale,omitempty"`
}

// Chart returns the rows for b.
func (s Summary) Chart(b Bucket) []Item {
	switch b {
	case Worldwide:
		return s.Worldwide
	case Domestic:
		return s.Domestic
	case Daily:
		return s.Daily
	case Weekend:
		return s.Weekend
	}
	return nil
}

// BoxOffice reads the box office charts through a cache.
type BoxOffice struct {
	getter *Getter
	base   string
	cache  *cache.Cache[[]Item]
	now    func() time.Time
}

// NewBoxOffice returns a BoxOffice client. An empty base uses
// DefaultBoxOfficeURL.
func NewBoxOffice(g *Getter, base string, c *cache.Cache[[]Item]) *BoxOffice {
	if base == "" {
		base = DefaultBoxOfficeURL
	}
	return &BoxOffice{getter: g, base: strings.TrimRight(base, "/"), cache: c, now: time.Now}
}

// Cache exposes the underlying cache.
func (b *BoxOffice) Cache() *cache.Cache[[]Item] { return b.cache }

// Fetcher returns the origin fetch for bucket, bypassing the cache.
func (b *BoxOffice) Fetcher(bucket Bucket) cache.FetchFunc[[]Item] {
	return func(ctx context.Context) ([]Item, error) {
		var items []Item
		if err := b.getter.GetJSON(ctx, b.base+"/"+bucket.Path(), nil, &items); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", bucket.Path(), err)
		}
		return items, nil
	}
}

// Get returns the chart for bucket.
func (b *BoxOffice) Get(ctx context.Context, bucket Bucket) (cache.Result[[]Item], error) {
	return b.cache.Fetch(ctx, bucket.Key(), b.Fetcher(bucket))
}

func (b *BoxOffice) Worldwide(ctx context.Context) ([]Item, error) {
	return b.cache.GetOrFetch(ctx, Worldwide.Key(), b.Fetcher(Worldwide))
}

func (b *BoxOffice) Domestic(ctx context.Context) ([]Item, error) {
	return b.cache.GetOrFetch(ctx, Domestic.Key(), b.Fetcher(Domestic))
}

func (b *BoxOffice) Daily(ctx context.Context) ([]Item, error) {
	return b.cache.GetOrFetch(ctx, Daily.Key(), b.Fetcher(Daily))
}

func (b *BoxOffice) Weekend(ctx context.Context) ([]Item, error) {
	return b.cache.GetOrFetch(ctx, Weekend.Key(), b.Fetcher(Weekend))
}

// All fetches the four charts concurrently. It fails if any chart can be
// neither fetched nor served from an expired entry.
func (b *BoxOffice) All(ctx context.Context) (Summary, error) {
	var (
		s       Summary
		results = make([]cache.Result[[]Item], len(Buckets))
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range Buckets {
		g.Go(func() error {
			r, err := b.Get(gctx, bucket)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s.Worldwide = results[0].Value
	s.Domestic = results[1].Value
	s.Daily = results[2].Value
	s.Weekend = results[3].Value
	for i, r := range results {
		if r.Stale() {
			s.Stale = append(s.Stale, Buckets[i])
		}
	}
	s.LastUpdated = b.now()
	return s, nil
}

// DailyDates returns the distinct dates present in items, newest first.
func DailyDates(items []Item) []string {
	seen := map[string]bool{}
	var dates []string
	for _, it := range items {
		if it.Date != "" && !seen[it.Date] {
			seen[it.Date] = true
			dates = append(dates, it.Date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// DailyFor narrows a daily chart to a single date. An empty date picks the
// latest one. Items without dates are returned unchanged.
func DailyFor(items []Item, date string) []Item {
	dates := DailyDates(items)
	if len(dates) == 0 {
		return items
	}
	if date == "" {
		date = dates[0]
	}

	var out []Item
	for _, it := range items {
		if it.Date == date {
			out = append(out, it)
		}
	}
	return out
}
