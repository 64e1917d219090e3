package diff

import (
	"strings"
	"testing"
)

func TestUnifiedIdenticalIsEmpty(t *testing.T) {
	got, err := Unified("<p>x</p>", "<p>x</p>", "a", "b")
	if err != nil || got != "" {
		t.Fatalf("Unified(identical) = %q, %v", got, err)
	}
}

func TestUnifiedSingleLineChange(t *testing.T) {
	got, err := Unified(`<img src="a.png">`, `<img src="a.png" alt="Logo">`, "before.html", "after.html")
	if err != nil {
		t.Fatalf("Unified: %v", err)
	}
	if !strings.HasPrefix(got, "--- before.html\n+++ after.html\n") {
		t.Fatalf("missing headers:\n%s", got)
	}
	added, removed := Stat(got)
	if added != 1 || removed != 1 {
		t.Fatalf("Stat = +%d -%d, want +1 -1\n%s", added, removed, got)
	}
}

func TestUnifiedAppendOnly(t *testing.T) {
	before := "a { color: red; }\n"
	after := before + "a:focus-visible { outline: 2px solid #0066cc; }\n"
	got, err := Unified(before, after, "before.css", "after.css")
	if err != nil {
		t.Fatalf("Unified: %v", err)
	}
	added, removed := Stat(got)
	if added != 1 || removed != 0 {
		t.Fatalf("Stat = +%d -%d, want +1 -0\n%s", added, removed, got)
	}
}

func TestStatCountsDashedContent(t *testing.T) {
	got, err := Unified(":root {\n--brand: red;\n++count: 1;\n}\n", ":root {\n--brand: blue;\n}\n", "a.css", "b.css")
	if err != nil {
		t.Fatalf("Unified: %v", err)
	}
	added, removed := Stat(got)
	if added != 1 || removed != 2 {
		t.Fatalf("Stat = +%d -%d, want +1 -2\n%s", added, removed, got)
	}

	env, err := Envelope("fix-x.css", "--a: 1;\n", "--a: 2;\n")
	if err != nil {
		t.Fatalf("Envelope: %v", err)
	}
	if added, removed := Stat(env); added != 1 || removed != 1 {
		t.Fatalf("Stat(envelope) = +%d -%d, want +1 -1\n%s", added, removed, env)
	}
}

func TestEnvelope(t *testing.T) {
	got, err := Envelope("fix-alt-text-0.html", "<img>", `<img alt="x">`)
	if err != nil {
		t.Fatalf("Envelope: %v", err)
	}
	want := "diff --git a/fix-alt-text-0.html b/fix-alt-text-0.html\nindex 0000000..1111111 100644\n--- a/fix-alt-text-0.html\n+++ b/fix-alt-text-0.html\n"
	if !strings.HasPrefix(got, want) {
		t.Fatalf("unexpected envelope:\n%s", got)
	}
	if empty, _ := Envelope("x.html", "same", "same"); empty != "" {
		t.Fatalf("envelope of no change should be empty, got %q", empty)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("+line\n", MaxDiffLines+10)
	got := Truncate(long)
	if !strings.HasSuffix(got, "... [truncated]") {
		t.Fatalf("long diff not truncated")
	}
	if short := "+a\n-b\n"; Truncate(short) != short {
		t.Fatalf("short diff changed")
	}
}
