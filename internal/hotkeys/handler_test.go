package hotkeys

import (
	"errors"
	"slices"
	"testing"

	"github.com/1broseidon/stratum/internal/config"
)

func TestBindings(t *testing.T) {
	cfg := config.HotkeysConfig{
		RaiseOrLower: "Mod4-Page_Up",
		Effects: map[string]string{
			"presentwindows": "Mod4-Tab",
			"dimscreen":      "",
			"fade":           "Mod4-f",
		},
	}
	got := Bindings(cfg)
	want := []Binding{
		{Key: "Mod4-Page_Up", Action: ActionRaiseOrLower},
		{Key: "Mod4-f", Action: ActionTrigger, Effect: "fade"},
		{Key: "Mod4-Tab", Action: ActionTrigger, Effect: "presentwindows"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Bindings = %+v, want %+v", got, want)
	}
}

func TestDefaultBindings(t *testing.T) {
	got := Bindings(config.DefaultConfig().Hotkeys)
	if len(got) != 3 {
		t.Fatalf("default bindings = %+v", got)
	}
}

type recorder struct {
	calls []string
}

func (r *recorder) RaiseOrLowerWindow(xid uint32) error {
	r.calls = append(r.calls, "raise_or_lower")
	return nil
}

func (r *recorder) LowerWindow(xid uint32) error {
	r.calls = append(r.calls, "lower")
	return nil
}

func (r *recorder) Trigger(effect string) error {
	r.calls = append(r.calls, "trigger "+effect)
	if effect == "missing" {
		return errors.New("effect \"missing\" is not loaded")
	}
	return nil
}

func TestBindingRun(t *testing.T) {
	r := &recorder{}
	for _, b := range []Binding{
		{Action: ActionRaiseOrLower},
		{Action: ActionLower},
		{Action: ActionTrigger, Effect: "presentwindows"},
	} {
		if err := b.Run(r); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"raise_or_lower", "lower", "trigger presentwindows"}
	if !slices.Equal(r.calls, want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	if err := (Binding{Action: ActionTrigger, Effect: "missing"}).Run(r); err == nil {
		t.Fatal("failed trigger returned nil")
	}
	if err := (Binding{Action: "bogus"}).Run(r); err == nil {
		t.Fatal("unknown action returned nil")
	}
}

func TestIgnoreMasks(t *testing.T) {
	tests := []struct {
		name  string
		locks []uint16
		want  []uint16
	}{
		{"caps only", []uint16{2, 0, 0}, []uint16{0, 2}},
		{"caps and num lock", []uint16{2, 16, 0}, []uint16{0, 2, 16, 18}},
		{"duplicate", []uint16{2, 2, 16}, []uint16{0, 2, 16, 18}},
		{"all three", []uint16{2, 16, 128}, []uint16{0, 2, 16, 18, 128, 130, 144, 146}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ignoreMasks(tt.locks...); !slices.Equal(got, tt.want) {
				t.Fatalf("ignoreMasks(%v) = %v, want %v", tt.locks, got, tt.want)
			}
		})
	}
}
