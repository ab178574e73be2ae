package utils

import "testing"

func TestStripHTML_RemovesScriptContent(t *testing.T) {
	got := StripHTML("<script>alert(1)</script>Inception")
	if got != "Inception" {
		t.Errorf("StripHTML() = %q, want %q", got, "Inception")
	}
}

func TestStripHTML_RemovesTagsKeepsText(t *testing.T) {
	cases := map[string]string{
		"<b>The Godfather</b>":          "The Godfather",
		"plain title":                   "plain title",
		"<img src=x onerror=alert(1)>x": "x",
		"  padded  ":                    "padded",
		"<style>body{}</style>ok":       "ok",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripHTML_DecodesBeforeStripping(t *testing.T) {
	// Encoded script tags must not survive sanitization.
	got := StripHTML("&lt;script&gt;alert(1)&lt;/script&gt;Heat")
	if got != "Heat" {
		t.Errorf("StripHTML() = %q, want %q", got, "Heat")
	}
	// Double-encoded payloads either.
	got = StripHTML("&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Heat")
	if got != "Heat" {
		t.Errorf("StripHTML() double-encoded = %q, want %q", got, "Heat")
	}
}

func TestStripHTML_UnterminatedTag(t *testing.T) {
	if got := StripHTML("title<script>alert(1)"); got != "title" {
		t.Errorf("StripHTML() = %q, want %q", got, "title")
	}
}

func TestStripIdentifier(t *testing.T) {
	cases := map[string]string{
		"alice":                   "alice",
		"user@example.com":        "user@example.com",
		"<b>bob</b>":              "bob",
		"ali'; DROP TABLE users;": "aliDROPTABLEusers",
		"a b\tc":                  "abc",
	}
	for in, want := range cases {
		if got := StripIdentifier(in); got != want {
			t.Errorf("StripIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
