package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestReadEntry(t *testing.T) {
	var g Group
	if err := yaml.Unmarshal([]byte("duration_ms: 200\nname: fast\nratio: oops\n"), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := ReadEntry(g, "duration_ms", 0); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
	if got := ReadEntry(g, "name", ""); got != "fast" {
		t.Fatalf("expected fast, got %q", got)
	}
	if got := ReadEntry(g, "ratio", 0.25); got != 0.25 {
		t.Fatalf("expected fallback for undecodable value, got %v", got)
	}
	if got := ReadEntry(g, "missing", true); !got {
		t.Fatalf("expected fallback for missing key")
	}
	if got := g.Keys(); len(got) != 3 || got[0] != "duration_ms" {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestReadEntry_ZeroGroup(t *testing.T) {
	var g Group
	if got := ReadEntry(g, "anything", 7); got != 7 {
		t.Fatalf("expected default from zero group, got %d", got)
	}
	if g.Has("anything") || g.Len() != 0 {
		t.Fatalf("expected empty group")
	}
}

func TestGroupSet(t *testing.T) {
	var g Group
	if err := g.Set("opacity", 0.8); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := ReadEntry(g, "opacity", 1.0); got != 0.8 {
		t.Fatalf("expected 0.8, got %v", got)
	}

	out, err := yaml.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "opacity: 0.8\n" {
		t.Fatalf("unexpected yaml %q", out)
	}
}
