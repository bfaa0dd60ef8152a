// internal/matching/weights.go
package matching

import (
	"fmt"
	"math"
)

// ValidateWeights checks that every factor weight lies in [0,1] and that
// the six weights sum to 1.0 within tolerance. The scorer never calls it;
// thesis creation is expected to.
func (c Config) ValidateWeights(w FactorWeights) WeightValidation {
	named := []struct {
		name  string
		value float64
	}{
		{"industry", w.Industry},
		{"stage", w.Stage},
		{"funding", w.Funding},
		{"location", w.Location},
		{"traction", w.Traction},
		{"team", w.Team},
	}

	for _, n := range named {
		if math.IsNaN(n.value) || n.value < 0 || n.value > 1 {
			return WeightValidation{
				Error: fmt.Sprintf("%s weight must be between 0 and 1, got %g", n.name, n.value),
			}
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > c.WeightSumTolerance {
		return WeightValidation{
			Error: fmt.Sprintf("weights must sum to 1.0, got %.2f", sum),
		}
	}

	return WeightValidation{Valid: true}
}

func ValidateWeights(w FactorWeights) WeightValidation {
	return DefaultConfig().ValidateWeights(w)
}
