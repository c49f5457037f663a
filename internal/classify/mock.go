package classify

import "context"

// Mock is a canned classifier for tests: it returns the configured
// predictions mapped through the same keyword table as a real backend.
type Mock struct {
	Predictions []Prediction
	Err         error

	// Calls counts Classify invocations.
	Calls int
}

func (m *Mock) Classify(ctx context.Context, image []byte) (Result, error) {
	m.Calls++
	if m.Err != nil {
		return Result{}, m.Err
	}
	return MapPredictions(m.Predictions), nil
}
