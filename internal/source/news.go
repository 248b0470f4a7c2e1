// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/store"
)

// DefaultNewsURL is the NewsAPI "everything" endpoint.
const DefaultNewsURL = "https://newsapi.org/v2/everything"

// DefaultNewsLimit is the page size used when none is given.
const DefaultNewsLimit = 8

type ArticleSource struct {
	Name string `json:"name"`
}

type Article struct {
	Source      ArticleSource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage,omitempty"`
	PublishedAt string        `json:"publishedAt"`
}

// newsQuery is the query and domain set of a category.
type newsQuery struct {
	q       string
	domains []string
}

var newsCategories = map[string]newsQuery{
	"film": {
		q:       `"film industry" OR "movie production" OR "box office"`,
		domains: []string{"variety.com", "hollywoodreporter.com", "deadline.com", "thewrap.com"},
	},
	"tv": {
		q:       `"tv industry" OR streaming OR ratings`,
		domains: []string{"deadline.com", "thewrap.com", "tvline.com"},
	},
	"celebrity": {
		q:       `celebrity OR celebrities OR "red carpet"`,
		domains: []string{"people.com", "ew.com", "eonline.com"},
	},
	"entertainment": {
		q:       "entertainment",
		domains: []string{"ew.com", "people.com", "eonline.com"},
	},
}

// NewsCategories lists the supported categories.
func NewsCategories() []string {
	cats := make([]string, 0, len(newsCategories))
	for c := range newsCategories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

type newsParams struct {
	Q        string `url:"q"`
	Domains  string `url:"domains"`
	SortBy   string `url:"sortBy"`
	PageSize int    `url:"pageSize"`
	Language string `url:"language"`
}

// News is a cached NewsAPI client.
type News struct {
	getter *Getter
	base   string
	apiKey string
	cache  *cache.Cache[[]Article]
}

// NewNews returns a News client. An empty base uses DefaultNewsURL.
func NewNews(g *Getter, base, apiKey string, s store.Store, ttl time.Duration, opts ...cache.Option) *News {
	if base == "" {
		base = DefaultNewsURL
	}
	return &News{getter: g, base: base, apiKey: apiKey, cache: cache.New[[]Article](s, ttl, opts...)}
}

// Articles returns the latest articles of category.
func (n *News) Articles(ctx context.Context, category string, limit int) (cache.Result[[]Article], error) {
	nq, ok := newsCategories[strings.ToLower(category)]
	if !ok {
		return cache.Result[[]Article]{}, fmt.Errorf("invalid news type %q (want one of %s)",
			category, strings.Join(NewsCategories(), ", "))
	}
	if limit <= 0 {
		limit = DefaultNewsLimit
	}

	params := newsParams{
		Q:        nq.q,
		Domains:  strings.Join(nq.domains, ","),
		SortBy:   "publishedAt",
		PageSize: limit,
		Language: "en",
	}
	key := fmt.Sprintf("news:%s?pageSize=%d", strings.ToLower(category), limit)

	return n.cache.Fetch(ctx, key, func(ctx context.Context) ([]Article, error) {
		if n.apiKey == "" {
			return nil, fmt.Errorf("news: %w", ErrNoAPIKey)
		}

		var body struct {
			Status   string    `json:"status"`
			Message  string    `json:"message"`
			Articles []Article `json:"articles"`
		}
		header := http.Header{"X-Api-Key": []string{n.apiKey}}
		if err := n.getter.GetJSON(ctx, n.base, header, &body, params); err != nil {
			return nil, fmt.Errorf("news %s: %w", category, err)
		}
		if body.Status == "error" {
			return nil, fmt.Errorf("news %s: %s", category, body.Message)
		}
		if body.Articles == nil {
			body.Articles = []Article{}
		}
		return body.Articles, nil
	})
}
