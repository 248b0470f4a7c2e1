// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// Attr is one column of output. Key is a gjson path relative to a result row.
type Attr struct {
	Key string
	// Include is false for attrs that only exist to be filtered or sorted on.
	Include bool
	// OutputKey names the value in json/yaml output and titles the text column.
	OutputKey string
	// TransformSpec is a string of transform flags, see Transform.
	TransformSpec string
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Transform applies TransformSpec to value:
//
//	$     money, rendered in millions
//	h     thousands separators (numbers only)
//	t, T  RFC3339 timestamp shown in MARQUEE_TZ or TZ
//	u, l  upper or lower case; the last one in the spec wins
//	N     keep the first N characters
//	-N    keep N characters with the middle elided
//
// Values that are neither strings nor numbers are returned untouched.
func (a *Attr) Transform(value interface{}) interface{} {
	spec := a.TransformSpec

	if n, ok := value.(float64); ok {
		switch {
		case strings.Contains(spec, "$"):
			value = Money(n)
		case strings.Contains(spec, "h"):
			value = humanize.Comma(int64(n))
		}
	}

	s, ok := value.(string)
	if !ok {
		return value
	}

	if strings.ContainsAny(spec, "tT") {
		local, err := localTime(s)
		if err != nil {
			log.Error("failed to parse time: " + s)
			// Don't retry the parse on the rows that follow.
			a.TransformSpec = strings.NewReplacer("t", "", "T", "").Replace(spec)
		} else {
			s = local
		}
	}

	if strings.Contains(spec, "$") {
		s = MoneyString(s)
	}

	// A global spec is prepended to the attr's own, so the rightmost case
	// and length flags are the most specific ones.
	switch lower, upper := strings.LastIndexAny(spec, "lL"), strings.LastIndexAny(spec, "uU"); {
	case lower > upper:
		s = strings.ToLower(s)
	case upper > lower:
		s = strings.ToUpper(s)
	}

	if lengths := lengthRe.FindAllString(spec, -1); len(lengths) > 0 {
		n, _ := strconv.Atoi(lengths[len(lengths)-1])
		s = clip(s, n)
	}

	return s
}

// localTime renders an RFC3339 timestamp in the zone named by MARQUEE_TZ,
// falling back to TZ. Without either, or with an unknown zone, s is
// returned unchanged.
func localTime(s string) (string, error) {
	tz := os.Getenv("MARQUEE_TZ")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return s, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s, err
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST"), nil
}

// clip shortens s to n characters. A negative n keeps both ends and joins
// them with "..".
func clip(s string, n int) string {
	width := n
	if width < 0 {
		width = -width
	}
	if len(s) <= width {
		return s
	}
	if n >= 0 {
		return s[:n]
	}
	half := width/2 - 1
	return s[:half] + ".." + s[len(s)-half:]
}

// Money renders n in millions of dollars, e.g. 63000000 becomes "$63.0M".
func Money(n float64) string {
	return fmt.Sprintf("$%.1fM", n/1_000_000) //nolint:mnd
}

// MoneyString applies Money to a figure such as "1,234,567" or
// "$652,980,194". Anything that does not read as a plain figure, including
// an already abbreviated "$9.9M", is returned as-is.
func MoneyString(s string) string {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	n, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return s
	}
	return Money(n)
}

// AttrList is the value of the --attrs flag.
type AttrList []Attr

// String renders the list in the key:output:transform form Set accepts.
func (a *AttrList) String() string {
	specs := make([]string, len(*a))
	for i, attr := range *a {
		specs[i] = attr.Key + ":" + attr.OutputKey + ":" + attr.TransformSpec
	}
	return strings.Join(specs, ",")
}

// Set adds the comma separated specs in value. Each spec is
// [!]key[:output[:transform]]; a leading ! keeps the attr out of the output
// and a missing output name defaults to the last segment of the key. A spec
// naming an attr already in the list updates it instead of adding another.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		attr := parseSpec(spec)
		if i := a.index(attr.Key); i >= 0 {
			(*a)[i].Include = attr.Include
			(*a)[i].OutputKey = attr.OutputKey
			(*a)[i].TransformSpec = attr.TransformSpec
			continue
		}
		*a = append(*a, attr)
	}
	return nil
}

func parseSpec(spec string) Attr {
	fields := strings.Split(spec, ":")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	key, excluded := strings.CutPrefix(fields[0], "!")
	attr := Attr{Key: strings.TrimPrefix(key, "."), Include: !excluded}
	if attr.Key == "*" {
		attr.Include = false
	}

	switch {
	case len(fields) == 1:
		attr.OutputKey = attr.Key[strings.LastIndex(attr.Key, ".")+1:]
	case fields[1] == "":
		attr.OutputKey = attr.Key
	default:
		attr.OutputKey = fields[1]
	}

	if len(fields) > 2 { //nolint:mnd
		attr.TransformSpec = fields[2]
	}
	return attr
}

// index finds the attr whose key or output name is key.
func (a AttrList) index(key string) int {
	for i, attr := range a {
		if attr.Key == key || attr.OutputKey == key {
			return i
		}
	}
	return -1
}

// SetGlobalTransformSpec prefixes every attr's TransformSpec with the spec
// given to the "*" attr, if any. Only the first "*" counts.
func (a *AttrList) SetGlobalTransformSpec() error {
	i := a.index("*")
	if i < 0 || (*a)[i].TransformSpec == "" {
		return nil
	}

	global := (*a)[i].TransformSpec
	for j := range *a {
		(*a)[j].TransformSpec = global + "," + (*a)[j].TransformSpec
	}
	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
