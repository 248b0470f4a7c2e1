// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"sort"
	"strings"

	"github.com/staranto/marquee/internal/filters"
)

type sortKey struct {
	name  string
	desc  bool
	cased bool
}

// parseSortSpec reads a --sort spec. Each comma-separated key may be prefixed
// with - for descending and ! for a case-sensitive comparison.
func parseSortSpec(spec string) []sortKey {
	var keys []sortKey
	for _, f := range strings.Split(spec, ",") {
		f = strings.TrimSpace(f)
		k := sortKey{}
	prefix:
		for f != "" {
			switch f[0] {
			case '-':
				k.desc = true
			case '!':
				k.cased = true
			default:
				break prefix
			}
			f = f[1:]
		}
		if f == "" {
			continue
		}
		k.name = f
		keys = append(keys, k)
	}
	return keys
}

// SortDataset orders rows in place by spec. The sort is stable, so rows equal
// on every key keep their upstream order.
func SortDataset(rows []map[string]interface{}, spec string) {
	keys := parseSortSpec(spec)
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(rows[i][k.name], rows[j][k.name], k.cased)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders missing values first, numbers and money strings
// numerically and everything else as text.
func compareValues(a, b interface{}, cased bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	x, y := InterfaceToString(a), InterfaceToString(b)
	if !cased {
		x, y = strings.ToLower(x), strings.ToLower(y)
	}
	return strings.Compare(x, y)
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		return filters.ParseAmount(n)
	}
	return 0, false
}
