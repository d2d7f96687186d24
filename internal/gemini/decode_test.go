package gemini

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type visionShape struct {
	Titles []string `json:"titles"`
	Angles []string `json:"angles"`
}

func TestDecodePlainJSON(t *testing.T) {
	raw := `{"titles": ["A", "B"], "angles": ["C"]}`
	fallback := visionShape{Titles: []string{"fallback"}}

	got := Decode(raw, fallback)
	want := visionShape{Titles: []string{"A", "B"}, Angles: []string{"C"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFencedJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"json tag", "```json\n{\"titles\": [\"A\"]}\n```"},
		{"no tag", "```\n{\"titles\": [\"A\"]}\n```"},
		{"surrounding whitespace", "  \n```json\n{\"titles\": [\"A\"]}\n```  \n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(tc.raw, visionShape{})
			want := visionShape{Titles: []string{"A"}}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeFallbackOnGarbage(t *testing.T) {
	fallback := visionShape{Titles: []string{"could not generate titles"}}

	cases := []string{
		"",
		"   ",
		"not json at all",
		"```json\nnot json either\n```",
		`{"titles": "wrong type"}`,
		"{truncated",
	}

	for _, raw := range cases {
		got := Decode(raw, fallback)
		if diff := cmp.Diff(fallback, got); diff != "" {
			t.Errorf("Decode(%q) should return fallback (-want +got):\n%s", raw, diff)
		}
	}
}

func TestDecodeFallbackIsExactValue(t *testing.T) {
	type nested struct {
		Palettes []struct {
			Name   string   `json:"name"`
			Colors []string `json:"colors"`
		} `json:"palettes"`
	}
	fallback := nested{}

	got := Decode("garbage", fallback)
	if diff := cmp.Diff(fallback, got); diff != "" {
		t.Errorf("fallback not returned exactly (-want +got):\n%s", diff)
	}
}

func TestDecodeScalarTypes(t *testing.T) {
	if got := Decode(`["x","y"]`, []string(nil)); len(got) != 2 {
		t.Errorf("slice decode failed: %v", got)
	}
	if got := Decode("garbage", []string{"fb"}); len(got) != 1 || got[0] != "fb" {
		t.Errorf("slice fallback failed: %v", got)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"{}", "{}"},
		{"  {} ", "{}"},
		{"```json{}```", "{}"},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
