// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/marquee/internal/attrs"
	"github.com/staranto/marquee/internal/config"
	"github.com/staranto/marquee/internal/filters"
)

type row = map[string]interface{}

// plainTable is a lipgloss table without visible borders.
func plainTable() *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false)
}

// DumpExamples prints command/description pairs as a two column table.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}
	t := plainTable().Headers("Command", "Description")
	for _, ex := range examples {
		t = t.Row(ex[0], ex[1])
	}
	fmt.Fprintln(w, t)
}

// SliceDiceSpit filters, sorts, transforms and renders raw according to the
// command flags. parent, when set, is the gjson path of the row array inside
// raw. A document that is a single object is treated as one row.
func SliceDiceSpit(raw bytes.Buffer,
	al attrs.AttrList,
	cmd *cli.Command,
	parent string,
	w io.Writer) error {

	if w == nil {
		w = os.Stdout
	}

	format := cmd.String("output")
	if format == "raw" {
		_, err := w.Write(raw.Bytes())
		return err
	}

	doc := gjson.ParseBytes(raw.Bytes())
	if parent != "" {
		doc = doc.Get(parent)
	}
	if doc.IsObject() {
		doc = gjson.Parse("[" + doc.Raw + "]")
	}

	rows := filters.FilterDataset(doc, al, cmd.String("filter"))
	if rows == nil {
		rows = []row{}
	}

	// Transforms run after the sort so money and dates order on their
	// original values.
	SortDataset(rows, cmd.String("sort"))
	if cmd.Bool("local") {
		for i := range al {
			al[i].TransformSpec += "t"
		}
	}
	for _, r := range rows {
		for i := range al {
			if al[i].TransformSpec != "" {
				r[al[i].OutputKey] = al[i].Transform(r[al[i].OutputKey])
			}
		}
	}

	switch format {
	case "json":
		b, err := json.Marshal(included(rows, al))
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(included(rows, al))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}

	TableWriter(rows, al, cmd, w)
	return nil
}

// included drops the attrs that were only wanted for filtering and sorting.
func included(rows []row, al attrs.AttrList) []row {
	out := make([]row, len(rows))
	for i, r := range rows {
		out[i] = make(row, len(al))
		for _, a := range al {
			if a.Include {
				out[i][a.OutputKey] = r[a.OutputKey]
			}
		}
	}
	return out
}

// tableStyles are the header, even row and odd row styles.
type tableStyles struct {
	header, even, odd lipgloss.Style
}

func newTableStyles(color bool) tableStyles {
	base := lipgloss.NewStyle().Align(lipgloss.Left)
	s := tableStyles{header: base, even: base, odd: base}
	if !color {
		return s
	}

	title, _ := config.GetString("colors.title", "#f6be00")
	even, _ := config.GetString("colors.even", "#ffffff")
	odd, _ := config.GetString("colors.odd", "#00c8f0")
	s.header = s.header.Foreground(lipgloss.Color(title))
	s.even = s.even.Foreground(lipgloss.Color(even))
	s.odd = s.odd.Foreground(lipgloss.Color(odd))
	return s
}

// TableWriter renders rows as text columns, one per included attr. Missing
// values print as "-". --titles adds a header row and --color zebra stripes
// the rows using the colors.* config keys.
func TableWriter(rows []row, al attrs.AttrList, cmd *cli.Command, w io.Writer) {
	if len(rows) == 0 {
		return
	}

	pad, _ := config.GetInt("padding", 2)
	log.Debugf("padding: %v", pad)
	styles := newTableStyles(ColorEnabled(cmd))

	var headers []string
	for _, a := range al {
		if a.Include {
			headers = append(headers, a.OutputKey)
		}
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = InterfaceToString(r[h], "-")
		}
		cells = append(cells, line)
	}

	t := plainTable().
		StyleFunc(func(r, c int) lipgloss.Style {
			style := styles.odd
			switch {
			case r == table.HeaderRow:
				style = styles.header
			case r%2 == 0:
				style = styles.even
			}
			if c > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(cells...)

	if cmd.Bool("titles") {
		t = t.Headers(headers...)
	}
	fmt.Fprintln(w, t)
}

// isTerminal reports whether stdout is a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ColorEnabled decides whether table output is colored. An explicit --color
// or --no-color wins, then NO_COLOR, then whether stdout is a terminal.
func ColorEnabled(cmd *cli.Command) bool {
	if cmd.IsSet("color") {
		return cmd.Bool("color")
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal()
}

// InterfaceToString renders a decoded JSON value for a table cell. Zero
// values render as emptyValue, or "" when it is not given.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	empty := ""
	if len(emptyValue) > 0 {
		empty = emptyValue[0]
	}
	if value == nil || reflect.ValueOf(value).IsZero() {
		return empty
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		// Ranks and ids are whole, ratings are not.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}
