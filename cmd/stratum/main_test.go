package main

import (
	"slices"
	"testing"

	"github.com/1broseidon/stratum/internal/config"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0x3a00007", 0x3a00007, false},
		{"0X10", 0x10, false},
		{"4194311", 4194311, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
		{"-1", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseWindowID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseWindowID(%q) = 0x%x, want 0x%x", tt.in, got, tt.want)
		}
	}
}

func TestCornerNames(t *testing.T) {
	edges := config.ScreenEdgesConfig{TopRight: "presentwindows", BottomLeft: "dimscreen"}.Corners()
	got := cornerNames(edges)
	if !slices.Equal(got, []string{"bottom_left", "top_right"}) {
		t.Fatalf("cornerNames = %v", got)
	}
	if len(cornerNames(nil)) != 0 {
		t.Fatal("cornerNames(nil) not empty")
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceDefault, Name: "compositing.refresh_rate"}, "default:compositing.refresh_rate"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestJoinOrNone(t *testing.T) {
	if got := joinOrNone(nil); got != "-" {
		t.Fatalf("joinOrNone(nil) = %q", got)
	}
	if got := joinOrNone([]string{"fade", "slideback"}); got != "fade,slideback" {
		t.Fatalf("joinOrNone = %q", got)
	}
}
