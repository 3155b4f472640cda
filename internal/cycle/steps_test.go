package cycle

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"30,60,90,120,150", []float64{30, 60, 90, 120, 150}},
		{" 25, 50 ,75, 100 ", []float64{25, 50, 75, 100}},
		{"1.5,,2.25,", []float64{1.5, 2.25}},
		{"50,10", []float64{50, 10}},
	}
	for _, tt := range tests {
		got, err := ParseSteps(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSteps_Rejects(t *testing.T) {
	for _, in := range []string{"", " , ,", "10,abc", "10,-5", "0", "NaN", "Inf,1"} {
		if _, err := ParseSteps(in); !errors.Is(err, ErrInvalidSteps) {
			t.Errorf("%q: expected ErrInvalidSteps, got %v", in, err)
		}
	}
}

func TestPresets(t *testing.T) {
	p := DefaultPresets()
	if got := p.Names(); !reflect.DeepEqual(got, []string{"large", "medium", "small"}) {
		t.Errorf("names = %v", got)
	}
	steps, err := p.Steps("medium")
	if err != nil || !reflect.DeepEqual(steps, []float64{30, 60, 90, 120, 150}) {
		t.Errorf("medium = %v, %v", steps, err)
	}
	if _, err := p.Steps("huge"); !errors.Is(err, ErrInvalidSteps) {
		t.Errorf("expected ErrInvalidSteps for unknown preset, got %v", err)
	}

	// Mutating a copy must not leak into the built-ins.
	p["small"] = "1"
	if DefaultPresets()["small"] != "3,6,9,12,15" {
		t.Error("built-in presets were mutated")
	}
}

func TestPresets_Resolve(t *testing.T) {
	p := DefaultPresets()
	steps, err := p.Resolve("large")
	if err != nil || steps[0] != 300 {
		t.Errorf("preset resolve: %v %v", steps, err)
	}
	steps, err = p.Resolve("5, 10")
	if err != nil || !reflect.DeepEqual(steps, []float64{5, 10}) {
		t.Errorf("literal resolve: %v %v", steps, err)
	}
}

func TestFormatSteps(t *testing.T) {
	if got := FormatSteps([]float64{30, 60, 0.5}); got != "30,60,0.5" {
		t.Errorf("got %q", got)
	}
}
