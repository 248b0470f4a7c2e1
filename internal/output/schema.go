// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// Tag is one attribute path discovered by walking a result type.
type Tag struct {
	Name string
	Kind string
}

// Print renders the tag into its display form.
func (t Tag) Print() string {
	if t.Kind == "" {
		return t.Name
	}
	return fmt.Sprintf("%-32s %s", t.Name, t.Kind)
}

const maxSchemaDepth = 2

// DumpSchema prints the attribute paths of typ that --attrs can select.
func DumpSchema(w io.Writer, typ reflect.Type) {
	for typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice {
		typ = typ.Elem()
	}

	tags := DumpSchemaWalker("", typ, 0)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for _, tag := range tags {
		fmt.Fprintln(w, tag.Print())
	}
}

// DumpSchemaWalker walks the json tags of typ. Nested structs and slices of
// structs are descended into up to maxSchemaDepth.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int) []Tag {
	tags := make([]Tag, 0)
	if typ.Kind() != reflect.Struct {
		return tags
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		ft := field.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		// Embedded structs contribute their fields at the same level.
		if field.Anonymous && name == "" && ft.Kind() == reflect.Struct {
			tags = append(tags, DumpSchemaWalker(holder, ft, depth)...)
			continue
		}
		if !field.IsExported() {
			continue
		}

		if name == "" {
			name = field.Name
		}
		if holder != "" {
			name = holder + "." + name
		}

		elem := ft
		if ft.Kind() == reflect.Slice {
			elem = ft.Elem()
			for elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
		}

		tags = append(tags, Tag{Name: name, Kind: kindName(ft)})

		if elem.Kind() == reflect.Struct && elem.PkgPath() != "time" && depth < maxSchemaDepth {
			tags = append(tags, DumpSchemaWalker(name, elem, depth+1)...)
		}
	}

	return tags
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice:
		return "list"
	case reflect.Struct:
		if t.PkgPath() == "time" {
			return "time"
		}
		return "object"
	case reflect.Map:
		return "object"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	default:
		return t.Kind().String()
	}
}
