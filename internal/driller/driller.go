// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package driller

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var indexRegex = regexp.MustCompile(`\[(\d+)\]`)

// Driller resolves path against json. Paths are dotted gjson paths that may
// also use [n] indexing. A single element array is stepped through
// transparently, so `cast.name` works against `{"cast":[{"name":"x"}]}`.
// Stepping through a longer array by key collects the key from every element.
func Driller(json, path string) gjson.Result {
	path = indexRegex.ReplaceAllString(path, ".$1")

	cur := gjson.Parse(json)
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			continue
		}
		if !cur.Exists() {
			return gjson.Result{}
		}

		if cur.IsArray() && !isIndex(seg) {
			arr := cur.Array()
			if len(arr) == 1 {
				cur = arr[0]
			} else {
				cur = cur.Get("#." + seg)
				continue
			}
		}
		cur = cur.Get(seg)
	}

	if cur.IsArray() {
		if arr := cur.Array(); len(arr) == 1 {
			return arr[0]
		}
	}
	return cur
}

func isIndex(seg string) bool {
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
