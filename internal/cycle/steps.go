package cycle

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Built-in step presets, keyed by their display label.
var builtinPresets = map[string]string{
	"small":  "3,6,9,12,15",
	"medium": "30,60,90,120,150",
	"large":  "300,600,900,1200,1500",
}

// Presets is a named set of step strings.
type Presets map[string]string

// DefaultPresets returns a fresh copy of the built-in presets.
func DefaultPresets() Presets {
	p := make(Presets, len(builtinPresets))
	for k, v := range builtinPresets {
		p[k] = v
	}
	return p
}

// Names returns preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Steps parses the preset called name.
func (p Presets) Steps(name string) ([]float64, error) {
	raw, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidSteps, name)
	}
	return ParseSteps(raw)
}

// Resolve interprets arg as a preset name first, then as a step list.
func (p Presets) Resolve(arg string) ([]float64, error) {
	if _, ok := p[arg]; ok {
		return p.Steps(arg)
	}
	return ParseSteps(arg)
}

// ParseSteps parses comma-separated step sizes such as "25, 50, 75".
// Blank entries are skipped. Anything that is not a positive finite number
// is rejected rather than dropped.
func ParseSteps(text string) ([]float64, error) {
	var steps []float64
	for _, tok := range strings.Split(text, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSteps, tok)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, fmt.Errorf("%w: %q must be a positive number", ErrInvalidSteps, tok)
		}
		steps = append(steps, v)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps in %q", ErrInvalidSteps, text)
	}
	return steps, nil
}

// FormatSteps renders steps back to the comma-separated form.
func FormatSteps(steps []float64) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = strconv.FormatFloat(s, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
