// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/marquee/internal/attrs"
	"github.com/staranto/marquee/internal/driller"
)

// filterRegex splits a filter expression into key, operator and target.
// Operators are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Entries are split on "," or on MARQUEE_FILTER_DELIM when it is set.
// Malformed entries are logged and skipped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	delim := ","
	if d, ok := os.LookupEnv("MARQUEE_FILTER_DELIM"); ok {
		delim = d
	}

	var out []Filter
	for _, expr := range strings.Split(spec, delim) {
		m := filterRegex.FindStringSubmatch(expr)
		if m == nil {
			log.Error("invalid filter: " + expr)
			continue
		}
		op, negate := strings.CutPrefix(m[2], "!")
		out = append(out, Filter{Key: strings.TrimSpace(m[1]), Negate: negate, Operand: op, Target: m[3]})
	}
	return out
}

// FilterDataset returns the rows of candidates that pass every filter in
// spec, each reduced to the attrs keyed by their output key. Values are left
// untransformed.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]interface{} {
	filters := BuildFilters(spec)

	var rows []map[string]interface{}
	for _, c := range candidates.Array() {
		if !applyFilters(c, al, filters) {
			continue
		}
		row := make(map[string]interface{}, len(al))
		for _, a := range al {
			row[a.OutputKey] = driller.Driller(c.Raw, a.Key).Value()
		}
		rows = append(rows, row)
	}
	return rows
}

// applyFilters reports whether candidate passes all filters. A filter naming
// a key that is not among al is reported and ignored.
func applyFilters(candidate gjson.Result, al attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		key, ok := resolve(al, f.Key)
		if !ok {
			msg := "filter key not found: " + f.Key
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
			continue
		}
		if !f.Match(driller.Driller(candidate.Raw, key).Value()) {
			return false
		}
	}
	return true
}

// resolve maps a filter key, given as either an attr key or output name, to
// the attr key.
func resolve(al attrs.AttrList, name string) (string, bool) {
	for _, a := range al {
		if a.OutputKey == name || a.Key == name {
			return a.Key, true
		}
	}
	return "", false
}

// Match reports whether value passes the filter. A missing value never
// passes, whatever the negation. Lists and objects only take '@'; any other
// operator lets them through.
func (f Filter) Match(value interface{}) bool {
	var hit, ok bool
	switch v := value.(type) {
	case nil:
		return false
	case string:
		// "$652,980,194" > 100000000 compares as a number.
		if n, isAmount := ParseAmount(v); isAmount && (f.Operand == "<" || f.Operand == ">") {
			if _, err := strconv.ParseFloat(f.Target, 64); err == nil {
				hit, ok = f.number(n)
				break
			}
		}
		hit, ok = f.text(v)
	case bool:
		hit, ok = f.text(strconv.FormatBool(v))
	case float64:
		hit, ok = f.number(v)
	default:
		if f.Operand != "@" {
			return true
		}
		hit, ok = f.contains(v)
	}
	return ok && hit != f.Negate
}

// ParseAmount reads a figure such as "$1,234" or "1234.5".
func ParseAmount(s string) (float64, bool) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	return n, err == nil
}

// The matchers below ignore Negate. ok is false when the filter cannot be
// evaluated against the value at all.

func (f Filter) contains(value interface{}) (hit, ok bool) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if fmt.Sprint(item) == f.Target {
				return true, true
			}
		}
		return false, true
	case map[string]any:
		_, found := v[f.Target]
		return found, true
	}
	log.Errorf("unsupported type for contains filtering: %T", value)
	return false, false
}

func (f Filter) number(value float64) (hit, ok bool) {
	target, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + f.Target)
		return false, false
	}

	switch f.Operand {
	case "=":
		return value == target, true
	case ">":
		return value > target, true
	case "<":
		return value < target, true
	}
	log.Error("unsupported numeric operand: " + f.Operand)
	return false, false
}

func (f Filter) text(value string) (hit, ok bool) {
	switch f.Operand {
	case "=":
		return value == f.Target, true
	case "~":
		return strings.EqualFold(value, f.Target), true
	case "^":
		return strings.HasPrefix(value, f.Target), true
	case ">":
		return value > f.Target, true
	case "<":
		return value < f.Target, true
	case "@":
		return strings.Contains(value, f.Target), true
	case "/":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			log.Error("invalid regex: " + f.Target)
			return false, false
		}
		return re.MatchString(value), true
	}
	log.Error("unsupported filtering operand: " + f.Operand)
	return false, false
}
