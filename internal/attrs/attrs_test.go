// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var casesFS embed.FS

// cases decodes testdata/file into a slice of T.
func cases[T any](t *testing.T, file string) []T {
	t.Helper()
	b, err := casesFS.ReadFile("testdata/" + file)
	require.NoError(t, err)
	var out []T
	require.NoError(t, yaml.Unmarshal(b, &out))
	require.NotEmpty(t, out, file)
	return out
}

func TestAttrList_Set(t *testing.T) {
	type setCase struct {
		Name      string
		Initial   []Attr
		Value     string
		WantLen   int    `yaml:"wantLen"`
		WantAttrs []Attr `yaml:"wantAttrs"`
	}

	for _, tc := range cases[setCase](t, "set_cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			al := AttrList(tc.Initial)
			require.NoError(t, al.Set(tc.Value))
			require.Len(t, al, tc.WantLen)
			for i, want := range tc.WantAttrs {
				assert.Equal(t, want, al[i], "attr %d", i)
			}
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	type globalCase struct {
		Name      string
		Initial   []Attr
		WantSpecs []string `yaml:"wantSpecs"`
	}

	for _, tc := range cases[globalCase](t, "global_transform_cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			al := AttrList(tc.Initial)
			require.NoError(t, al.SetGlobalTransformSpec())

			got := make([]string, len(al))
			for i := range al {
				got[i] = al[i].TransformSpec
			}
			assert.Equal(t, tc.WantSpecs, got)
		})
	}
}

func TestAttr_Transform(t *testing.T) {
	type transformCase struct {
		Name          string
		TransformSpec string `yaml:"transformSpec"`
		Input         interface{}
		EnvVars       map[string]string `yaml:"envVars"`
		Want          interface{}
	}

	for _, tc := range cases[transformCase](t, "transform_cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			t.Setenv("TZ", "")
			t.Setenv("MARQUEE_TZ", "")
			for k, v := range tc.EnvVars {
				t.Setenv(k, v)
			}

			a := Attr{TransformSpec: tc.TransformSpec}
			assert.Equal(t, tc.Want, a.Transform(tc.Input))
		})
	}
}

func TestAttr_Transform_DropsBadTime(t *testing.T) {
	t.Setenv("MARQUEE_TZ", "UTC")

	a := Attr{TransformSpec: "tu"}
	assert.Equal(t, "TBA", a.Transform("tba"))
	assert.Equal(t, "u", a.TransformSpec)
}

func TestAttr_Transform_TimeZone(t *testing.T) {
	const stamp = "2024-01-15T10:00:00Z"

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"TZ", map[string]string{"TZ": "America/Los_Angeles"}, "2024-01-15T02:00:00PST"},
		{"MARQUEE_TZ over TZ", map[string]string{"TZ": "America/Los_Angeles", "MARQUEE_TZ": "Europe/London"}, "2024-01-15T10:00:00GMT"},
		{"unknown zone", map[string]string{"MARQUEE_TZ": "Mars/Olympus_Mons"}, stamp},
		{"no zone", nil, stamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TZ", "")
			t.Setenv("MARQUEE_TZ", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			a := Attr{TransformSpec: "t"}
			assert.Equal(t, tt.want, a.Transform(stamp))
		})
	}
}

func TestAttr_Transform_Numbers(t *testing.T) {
	tests := []struct {
		spec  string
		input float64
		want  interface{}
	}{
		{"$", 185000000, "$185.0M"},
		{"$", 2500000, "$2.5M"},
		{"h", 1361974400, "1,361,974,400"},
		{"h", 12, "12"},
		{"", 7.5, 7.5},
		{"u", 3, float64(3)},
		{"$,4", 185000000, "$185"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			a := Attr{TransformSpec: tt.spec}
			assert.Equal(t, tt.want, a.Transform(tt.input))
		})
	}
}

func TestClip(t *testing.T) {
	assert.Equal(t, "Dune", clip("Dune", 4))
	assert.Equal(t, "Du", clip("Dune", 2))
	assert.Equal(t, "", clip("Dune", 0))
	assert.Equal(t, "Dune", clip("Dune", -4))
	assert.Equal(t, "The..tor", clip("The Brutalist Director", -8))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "$1.2M", MoneyString("1234567"))
	assert.Equal(t, "$9.9M", MoneyString("$9.9M"))
	assert.Equal(t, "", MoneyString(""))
	assert.Equal(t, "TBD", MoneyString("TBD"))
}

func TestAttrList_String(t *testing.T) {
	type stringCase struct {
		Name     string
		AttrList []Attr `yaml:"attrList"`
		Want     string
	}

	for _, tc := range cases[stringCase](t, "string_cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			al := AttrList(tc.AttrList)
			assert.Equal(t, tc.Want, al.String())
			assert.Equal(t, "list", al.Type())
		})
	}
}
