// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// no-cloc
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/marquee/internal/config"
)

// upstream is a fake for every HTTP API the commands talk to. Bodies are
// keyed by URL path.
type upstream struct {
	srv  *httptest.Server
	mu   sync.Mutex
	hits map[string]int
	body map[string]string
	down bool
	seen http.Header
}

func newUpstream(t *testing.T, bodies map[string]string) *upstream {
	t.Helper()
	u := &upstream{hits: map[string]int{}, body: bodies}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.hits[r.URL.Path]++
		u.seen = r.Header.Clone()
		if u.down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		b, ok := u.body[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(b))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) Hits(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *upstream) SetDown(down bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.down = down
}

func (u *upstream) SetBody(path, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.body[path] = body
}

// isolate points config and the file store at the test's own temp space and
// every upstream at url.
func isolate(t *testing.T, url string) {
	t.Helper()
	t.Setenv("MARQUEE_CFG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MARQUEE_CACHE_DIR", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	for _, name := range []string{"BOXOFFICE", "TMDB", "OMDB", "NEWS"} {
		t.Setenv("MARQUEE_"+name+"_URL", url)
	}
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	argv := append([]string{"marquee"}, args...)
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err = app.Run(context.Background(), argv)
	return stdout.String(), stderr.String(), err
}

func jsonRows(t *testing.T, s string) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &rows), s)
	return rows
}

const worldwide = `[
  {"rank": 1, "title": "Inside Out 2", "url": "/release/rl1", "gross": "$1,698,863,816"},
  {"rank": 2, "title": "Deadpool & Wolverine", "url": "/release/rl2", "gross": "$1,338,073,645"}
]`

const daily = `[
  {"rank": 1, "title": "Twisters", "gross": "$81,251,415", "dailyGross": "$9,135,280", "daysInRelease": 4, "date": "2024-07-22"},
  {"rank": 2, "title": "Inside Out 2", "gross": "$596,627,040", "dailyGross": "$1,201,331", "daysInRelease": 39, "date": "2024-07-22"},
  {"rank": 1, "title": "Twisters", "gross": "$72,116,135", "dailyGross": "$13,500,000", "daysInRelease": 3, "date": "2024-07-21"}
]`

func boxOfficeBodies() map[string]string {
	return map[string]string{
		"/box-office/worldwide": worldwide,
		"/box-office/domestic":  `[{"rank": 1, "title": "Twisters", "gross": "$81,251,415"}]`,
		"/box-office/daily":     daily,
		"/box-office/weekend":   `[{"rank": 1, "title": "Twisters", "gross": "$81,251,415"}]`,
	}
}

func TestBq_FetchThenCacheHit(t *testing.T) {
	up := newUpstream(t, boxOfficeBodies())
	isolate(t, up.srv.URL)

	out, stderr, err := runApp(t, "bq", "worldwide", "-o", "json")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	rows := jsonRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Inside Out 2", rows[0]["title"])
	assert.Equal(t, float64(1), rows[0]["rank"])
	assert.Equal(t, "$1,698,863,816", rows[0]["gross"])

	again, _, err := runApp(t, "bq", "worldwide", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, out, again)
	assert.Equal(t, 1, up.Hits("/box-office/worldwide"), "second run should be served from the cache")
}

func TestBq_ServesStaleWhenUpstreamFails(t *testing.T) {
	up := newUpstream(t, boxOfficeBodies())
	isolate(t, up.srv.URL)

	_, _, err := runApp(t, "bq", "worldwide", "-o", "json")
	require.NoError(t, err)

	up.SetDown(true)
	out, stderr, err := runApp(t, "bq", "worldwide", "-o", "json", "--ttl", "0")
	require.NoError(t, err)

	rows := jsonRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Deadpool & Wolverine", rows[1]["title"])
	assert.Contains(t, stderr, "warning: bq result is cached data")
	assert.Contains(t, stderr, "refresh failed")
	assert.Greater(t, up.Hits("/box-office/worldwide"), 1)
}

func TestBq_OfflineServesStaleAndFailsOnMiss(t *testing.T) {
	up := newUpstream(t, boxOfficeBodies())
	isolate(t, up.srv.URL)

	_, _, err := runApp(t, "bq", "domestic", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	_, _, err = runApp(t, "bq", "domestic")
	require.NoError(t, err)
	hits := up.Hits("/box-office/domestic")

	out, stderr, err := runApp(t, "bq", "domestic", "--offline", "--ttl", "0", "--titles")
	require.NoError(t, err)
	assert.Contains(t, out, "Twisters")
	assert.Contains(t, stderr, "cached data")
	assert.Equal(t, hits, up.Hits("/box-office/domestic"))
}

func TestBq_Daily(t *testing.T) {
	up := newUpstream(t, boxOfficeBodies())
	isolate(t, up.srv.URL)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"latest date", nil, 2},
		{"explicit date", []string{"--date", "2024-07-21"}, 1},
		{"every date", []string{"--date", "all"}, 3},
		{"unknown date", []string{"--date", "1999-01-01"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"bq", "daily", "-o", "json"}, tt.args...)
			out, _, err := runApp(t, args...)
			require.NoError(t, err)
			assert.Len(t, jsonRows(t, out), tt.want)
		})
	}
}

func TestBq_All(t *testing.T) {
	up := newUpstream(t, boxOfficeBodies())
	isolate(t, up.srv.URL)

	out, stderr, err := runApp(t, "bq", "all", "-o", "json", "--filter", "title=Twisters")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	rows := jsonRows(t, out)
	charts := []string{}
	for _, r := range rows {
		charts = append(charts, r["chart"].(string))
	}
	assert.Equal(t, []string{"domestic", "daily", "weekend"}, charts)

	// A chart that fails to refresh is served from its expired entry.
	up.SetBody("/box-office/weekend", `not json`)
	out, stderr, err = runApp(t, "bq", "--ttl", "0", "-o", "json")
	require.NoError(t, err)
	assert.NotEmpty(t, jsonRows(t, out))
	assert.Contains(t, stderr, "warning: weekend served from expired cache entries")

	// With nothing stored to fall back on the whole summary fails.
	_, _, err = runApp(t, "bq", "--store", "memory")
	require.Error(t, err)
}

func TestBq_UnknownChart(t *testing.T) {
	isolate(t, "http://127.0.0.1:0")

	_, _, err := runApp(t, "bq", "monthly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown box office chart "monthly"`)
}

func TestMq_FinancialsMoney(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/movie/872585": `{"id": 872585, "title": "Oppenheimer", "release_date": "2023-07-19",
			"budget": 100000000, "revenue": 952000000}`,
	})
	isolate(t, up.srv.URL)
	t.Setenv("MARQUEE_TMDB_API_KEY", "k")

	out, _, err := runApp(t, "mq", "financials", "872585", "-o", "json")
	require.NoError(t, err)

	rows := jsonRows(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Oppenheimer", rows[0]["title"])
	assert.Equal(t, "$100.0M", rows[0]["budget"])
	assert.Equal(t, "$952.0M", rows[0]["revenue"])
	assert.Equal(t, "USD", rows[0]["currency"])
}

func TestMq_ListsAndErrors(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/movie/top_rated": `{"page": 1, "total_pages": 1, "results": [
			{"id": 278, "title": "The Shawshank Redemption", "release_date": "1994-09-23", "vote_average": 8.7},
			{"id": 238, "title": "The Godfather", "release_date": "1972-03-14", "vote_average": 8.69}
		]}`,
	})
	isolate(t, up.srv.URL)

	// The key check happens on fetch, so a missing key is an error on a miss.
	_, _, err := runApp(t, "mq", "top")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")

	t.Setenv("MARQUEE_TMDB_API_KEY", "k")
	out, _, err := runApp(t, "mq", "top-rated", "-o", "json", "--sort", "title")
	require.NoError(t, err)
	rows := jsonRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "The Godfather", rows[0]["title"])
	assert.Equal(t, 1, up.Hits("/movie/top_rated"))

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"mq", "details"}, "missing movie id"},
		{[]string{"mq", "details", "abc"}, `invalid movie id "abc"`},
		{[]string{"mq", "search"}, "missing search query"},
		{[]string{"mq", "sideways"}, "want a movie list"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := runApp(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOq_Search(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/": `{"Search": [
			{"Title": "The Matrix", "Year": "1999", "imdbID": "tt0133093", "Type": "movie"},
			{"Title": "The Matrix Reloaded", "Year": "2003", "imdbID": "tt0234215", "Type": "movie"}
		], "totalResults": "2", "Response": "True"}`,
	})
	isolate(t, up.srv.URL+"/")
	t.Setenv("MARQUEE_OMDB_API_KEY", "k")

	out, _, err := runApp(t, "oq", "search", "the", "matrix", "-o", "json")
	require.NoError(t, err)

	rows := jsonRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "tt0133093", rows[0]["id"])
	assert.Equal(t, "The Matrix Reloaded", rows[1]["title"])

	_, _, err = runApp(t, "oq", "lookup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want search or details")
}

func TestNq_Articles(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/": `{"status": "ok", "articles": [
			{"source": {"name": "Variety"}, "title": "Box office slows", "url": "https://variety.com/a",
			 "publishedAt": "2024-07-22T14:00:00Z"}
		]}`,
	})
	isolate(t, up.srv.URL+"/")
	t.Setenv("MARQUEE_NEWS_API_KEY", "secret")

	out, _, err := runApp(t, "nq", "film", "--limit", "3", "-o", "json")
	require.NoError(t, err)

	rows := jsonRows(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Variety", rows[0]["source"])
	assert.Equal(t, "2024-07-22T14:00:00Z", rows[0]["published"])
	assert.Equal(t, "secret", up.seen.Get("X-Api-Key"))

	_, _, err = runApp(t, "nq", "sports")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid news type "sports"`)
}

func TestGlobalFlagsValidator(t *testing.T) {
	isolate(t, "http://127.0.0.1:0")

	_, _, err := runApp(t, "bq", "--offline", "--store", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--offline with --store memory")

	_, _, err = runApp(t, "bq", "--store", "floppy")
	require.Error(t, err)

	_, _, err = runApp(t, "bq", "--output", "xml")
	require.Error(t, err)
}

func TestFlagValidators(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		validator FlagValidatorType
		wantErr   bool
	}{
		{"jammed", "--sort", JammedFlagValidator, true},
		{"not jammed", "title", JammedFlagValidator, false},
		{"output ok", "yaml", OutputValidator, false},
		{"output bad", "csv", OutputValidator, true},
		{"store ok", "Redis", StoreValidator, false},
		{"store bad", "floppy", StoreValidator, true},
		{"ttl zero", 0, NonNegativeValidator, false},
		{"ttl negative", -1, NonNegativeValidator, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompletion(t *testing.T) {
	isolate(t, "http://127.0.0.1:0")

	out, _, err := runApp(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _marquee marquee")

	out, _, err = runApp(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef marquee")

	t.Setenv("SHELL", "/bin/fish")
	_, _, err = runApp(t, "completion")
	assert.Error(t, err)
}

func TestTLDR_BuiltInExamples(t *testing.T) {
	up := newUpstream(t, boxOfficeBodies())
	isolate(t, up.srv.URL)

	orig := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = orig })

	out, _, err := runApp(t, "bq", "--tldr")
	require.NoError(t, err)
	assert.Contains(t, out, "marquee bq worldwide --sort -gross")
	assert.Contains(t, out, "Description")
	assert.Zero(t, up.Hits("/box-office/worldwide"))
}

func TestAq_Filmography(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/person/287": `{"id": 287, "name": "Brad Pitt", "known_for_department": "Acting",
			"movie_credits": {"cast": [
				{"id": 550, "title": "Fight Club", "character": "Tyler Durden", "release_date": "1999-10-15", "vote_average": 8.4},
				{"id": 807, "title": "Se7en", "character": "David Mills", "release_date": "1995-09-22", "vote_average": 8.4}
			]},
			"tv_credits": {"cast": [{"id": 1668, "name": "Friends", "character": "Will Colbert", "first_air_date": "1994-09-22"}]}}`,
	})
	isolate(t, up.srv.URL)
	t.Setenv("MARQUEE_TMDB_API_KEY", "k")

	out, _, err := runApp(t, "aq", "287", "--sort", "date")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Brad Pitt (Acting)\n"), out)
	assert.Less(t, strings.Index(out, "Se7en"), strings.Index(out, "Fight Club"))

	out, _, err = runApp(t, "aq", "287", "--tv", "-o", "json")
	require.NoError(t, err)
	rows := jsonRows(t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "Friends", rows[0]["title"])
	assert.Equal(t, 1, up.Hits("/person/287"))
}

func TestTvq_Season(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/tv/1396/season/1": `{"id": 3572, "name": "Season 1", "season_number": 1, "episodes": [
			{"id": 62085, "name": "Pilot", "episode_number": 1, "air_date": "2008-01-20"},
			{"id": 62086, "name": "Cat's in the Bag...", "episode_number": 2, "air_date": "2008-01-27"}
		]}`,
	})
	isolate(t, up.srv.URL)
	t.Setenv("MARQUEE_TMDB_API_KEY", "k")

	out, _, err := runApp(t, "tvq", "season", "1396", "1", "-o", "json", "--attrs", "name")
	require.NoError(t, err)
	rows := jsonRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Pilot", rows[0]["name"])

	_, _, err = runApp(t, "tvq", "season", "1396")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing season number")

	_, _, err = runApp(t, "tvq", "reruns")
	require.Error(t, err)
}
