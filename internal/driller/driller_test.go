// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// no-cloc
package driller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oppenheimer = `{
  "id": 872585,
  "title": "Oppenheimer",
  "adult": false,
  "video": true,
  "runtime": 181,
  "tagline": null,
  "belongs_to_collection": {},
  "production-status": "Released",
  "spoken_languages": ["en"],
  "origin_country": ["US", "GB"],
  "genres": [{"id": 18, "name": "Drama"}, {"id": 36, "name": "History"}],
  "credits": {
    "cast": [{"name": "Cillian Murphy", "character": "J. Robert Oppenheimer"}, {"name": "Emily Blunt"}],
    "crew": [{"job": "Director", "name": "Christopher Nolan", "department": {"name": "Directing"}}]
  },
  "videos": {"results": []},
  "release_dates": {"results": [{"iso_3166_1": "US", "release_dates": [{"certification": "R", "type": 3}]}]}
}`

func TestDriller(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		path        string
		expectedStr string
		isNil       bool
		isArray     bool
	}{
		// Scalars
		{name: "string", json: oppenheimer, path: "title", expectedStr: "Oppenheimer"},
		{name: "number", json: oppenheimer, path: "runtime", expectedStr: "181"},
		{name: "true", json: oppenheimer, path: "video", expectedStr: "true"},
		{name: "false", json: oppenheimer, path: "adult", expectedStr: "false"},
		{name: "null", json: oppenheimer, path: "tagline", isNil: true},
		{name: "hyphenated key", json: oppenheimer, path: "production-status", expectedStr: "Released"},
		{name: "digits in key", json: oppenheimer, path: "release_dates.results.iso_3166_1", expectedStr: "US"},

		// Single element arrays are stepped through
		{name: "single element array unwraps", json: oppenheimer, path: "spoken_languages", expectedStr: "en"},
		{name: "single element array of objects", json: oppenheimer, path: "credits.crew.name", expectedStr: "Christopher Nolan"},
		{name: "nested single element arrays", json: oppenheimer, path: "release_dates.results.release_dates.certification", expectedStr: "R"},
		{name: "object below array element", json: oppenheimer, path: "credits.crew.department.name", expectedStr: "Directing"},

		// Multi element arrays
		{name: "multi element array stays array", json: oppenheimer, path: "origin_country", isArray: true},
		{name: "multi element array collects key", json: oppenheimer, path: "genres.name", expectedStr: `["Drama","History"]`},
		{name: "explicit first index", json: oppenheimer, path: "origin_country[0]", expectedStr: "US"},
		{name: "explicit last index", json: oppenheimer, path: "origin_country[1]", expectedStr: "GB"},
		{name: "index then key", json: oppenheimer, path: "credits.cast[1].name", expectedStr: "Emily Blunt"},
		{name: "index then key on first", json: oppenheimer, path: "credits.cast[0].character", expectedStr: "J. Robert Oppenheimer"},
		{name: "numeric elements", json: `{"grosses": [81, 72, 39]}`, path: "grosses[2]", expectedStr: "39"},
		{name: "leading index on array document", json: `[{"title": "Dune"}, {"title": "Wicked"}]`, path: "[1].title", expectedStr: "Wicked"},

		// Shapes seen in the other sources
		{name: "box office row", json: `{"rank": 1, "title": "Inside Out 2", "gross": "$652,980,194"}`, path: "gross", expectedStr: "$652,980,194"},
		{name: "article source name", json: `{"source": {"name": "Variety"}, "title": "Awards season"}`, path: "source.name", expectedStr: "Variety"},
		{
			name:        "deeply nested season episode",
			json:        `{"seasons": [{"episodes": [{"crew": [{"job": "Director", "name": "Vince Gilligan"}]}]}]}`,
			path:        "seasons[0].episodes[0].crew[0].name",
			expectedStr: "Vince Gilligan",
		},

		// Misses
		{name: "missing key", json: oppenheimer, path: "budget", isNil: true},
		{name: "missing nested key", json: oppenheimer, path: "credits.writers", isNil: true},
		{name: "index out of range", json: oppenheimer, path: "origin_country[10]", isNil: true},
		{name: "index into empty array", json: oppenheimer, path: "videos.results[0]", isNil: true},
		{name: "any key of empty object", json: oppenheimer, path: "belongs_to_collection.name", isNil: true},
		{name: "empty document", json: `{}`, path: "title", isNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Driller(tt.json, tt.path)

			if tt.isNil {
				assert.True(t, !result.Exists() || result.Type.String() == "Null",
					"expected no value, got %v", result.Value())
				return
			}

			require.True(t, result.Exists(), "expected a value")
			if tt.isArray {
				assert.True(t, result.IsArray(), "expected an array, got %v", result.Value())
				return
			}
			assert.Equal(t, tt.expectedStr, result.String())
		})
	}
}

func BenchmarkDriller(b *testing.B) {
	paths := map[string]string{
		"top_level":      "title",
		"nested":         "credits.crew.department.name",
		"explicit_index": "credits.cast[1].name",
		"collect":        "genres.name",
	}

	for name, path := range paths {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Driller(oppenheimer, path)
			}
		})
	}
}
