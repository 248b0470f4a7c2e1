// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/store"
)

// DefaultOMDbURL is the OMDb API root.
const DefaultOMDbURL = "https://www.omdbapi.com/"

// ErrNotFound is an OMDb lookup that matched nothing.
var ErrNotFound = errors.New("not found")

type OMDbMovie struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// OMDbSearch is a page of search hits.
type OMDbSearch struct {
	Movies       []OMDbMovie `json:"movies"`
	TotalResults int         `json:"totalResults"`
}

type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type OMDbDetails struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	IMDbRating string   `json:"imdbRating"`
	IMDbVotes  string   `json:"imdbVotes"`
	IMDbID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	DVD        string   `json:"DVD,omitempty"`
	BoxOffice  string   `json:"BoxOffice,omitempty"`
	Production string   `json:"Production,omitempty"`
	Website    string   `json:"Website,omitempty"`
}

// omdbEnvelope carries the Response/Error pair OMDb puts on every body.
type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (e omdbEnvelope) err() error {
	if strings.EqualFold(e.Response, "False") {
		if strings.Contains(strings.ToLower(e.Error), "not found") {
			return fmt.Errorf("omdb: %w: %s", ErrNotFound, e.Error)
		}
		return fmt.Errorf("omdb: %s", e.Error)
	}
	return nil
}

type omdbSearchParams struct {
	Search string `url:"s"`
	Page   int    `url:"page,omitempty"`
}

type omdbIDParams struct {
	ID string `url:"i"`
}

type omdbAuth struct {
	APIKey string `url:"apikey"`
}

// OMDb is a cached client for the OMDb search and lookup endpoints.
type OMDb struct {
	getter  *Getter
	base    string
	apiKey  string
	search  *cache.Cache[OMDbSearch]
	details *cache.Cache[OMDbDetails]
}

// NewOMDb returns an OMDb client. An empty base uses DefaultOMDbURL.
func NewOMDb(g *Getter, base, apiKey string, s store.Store, ttl time.Duration, opts ...cache.Option) *OMDb {
	if base == "" {
		base = DefaultOMDbURL
	}
	return &OMDb{
		getter:  g,
		base:    base,
		apiKey:  apiKey,
		search:  cache.New[OMDbSearch](s, ttl, opts...),
		details: cache.New[OMDbDetails](s, ttl, opts...),
	}
}

// Search finds titles matching q. No match is an empty page, not an error.
func (o *OMDb) Search(ctx context.Context, q string, page int) (cache.Result[OMDbSearch], error) {
	params := omdbSearchParams{Search: q, Page: page}
	return o.search.Fetch(ctx, Key("omdb", "search", params), func(ctx context.Context) (OMDbSearch, error) {
		if o.apiKey == "" {
			return OMDbSearch{}, fmt.Errorf("omdb: %w", ErrNoAPIKey)
		}

		var body struct {
			omdbEnvelope
			Search       []OMDbMovie `json:"Search"`
			TotalResults string      `json:"totalResults"`
		}
		if err := o.getter.GetJSON(ctx, o.base, nil, &body, params, omdbAuth{APIKey: o.apiKey}); err != nil {
			return OMDbSearch{}, fmt.Errorf("omdb search: %w", err)
		}
		if err := body.err(); err != nil && !errors.Is(err, ErrNotFound) {
			return OMDbSearch{}, err
		}

		total, _ := strconv.Atoi(body.TotalResults)
		movies := body.Search
		if movies == nil {
			movies = []OMDbMovie{}
		}
		return OMDbSearch{Movies: movies, TotalResults: total}, nil
	})
}

// Details looks up a title by IMDb id.
func (o *OMDb) Details(ctx context.Context, imdbID string) (cache.Result[OMDbDetails], error) {
	params := omdbIDParams{ID: imdbID}
	return o.details.Fetch(ctx, Key("omdb", "title", params), func(ctx context.Context) (OMDbDetails, error) {
		if o.apiKey == "" {
			return OMDbDetails{}, fmt.Errorf("omdb: %w", ErrNoAPIKey)
		}

		var body struct {
			omdbEnvelope
			OMDbDetails
		}
		if err := o.getter.GetJSON(ctx, o.base, nil, &body, params, omdbAuth{APIKey: o.apiKey}); err != nil {
			return OMDbDetails{}, fmt.Errorf("omdb lookup: %w", err)
		}
		if err := body.err(); err != nil {
			return OMDbDetails{}, err
		}
		return body.OMDbDetails, nil
	})
}
