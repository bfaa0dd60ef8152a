package validatethesisweights

import (
	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/matching"
)

type Input struct {
	ThesisID string                 `json:"thesisId,omitempty"`
	Weights  matching.FactorWeights `json:"weights"`
}

// Output reports the result as process data. An invalid weight set is a
// normal outcome for the BPMN gateway, not a job failure.
type Output struct {
	ThesisID     string           `json:"thesisId,omitempty"`
	WeightsValid bool             `json:"weightsValid"`
	Error        string           `json:"weightsError,omitempty"`
	ErrorCode    errors.ErrorCode `json:"weightsErrorCode,omitempty"`
	WeightSum    float64          `json:"weightSum"`
}

// Err returns a WEIGHTS_INVALID error for callers that treat an invalid
// weight set as a failure, or nil when the weights are valid.
func (o *Output) Err() error {
	if o.WeightsValid {
		return nil
	}
	return errors.NewWeightsInvalidError(o.Error)
}
