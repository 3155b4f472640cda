package cycle

import (
	"fmt"
	"math"

	"PriceCycle/internal/model"
)

// GenerateLevels folds steps over reference. Level k sits at
// reference ± (steps[0] + ... + steps[k]). Values are not rounded.
func GenerateLevels(reference float64, steps []float64) (model.LevelSet, error) {
	if err := ValidateSteps(steps); err != nil {
		return model.LevelSet{}, err
	}

	ls := model.LevelSet{
		Reference:   reference,
		Steps:       append([]float64(nil), steps...),
		Resistances: make([]float64, 0, len(steps)),
		Supports:    make([]float64, 0, len(steps)),
	}
	up, down := reference, reference
	for _, s := range steps {
		up += s
		down -= s
		ls.Resistances = append(ls.Resistances, up)
		ls.Supports = append(ls.Supports, down)
	}
	return ls, nil
}

// ValidateSteps checks that steps is non-empty and every value is finite.
func ValidateSteps(steps []float64) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: no steps given", ErrInvalidSteps)
	}
	for i, s := range steps {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: step %d is %v", ErrInvalidSteps, i+1, s)
		}
	}
	return nil
}
