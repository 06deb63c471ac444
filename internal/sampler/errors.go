package sampler

import "fmt"

// SamplingError is returned when a cover could not be turned into a color.
// The cover reference is kept so the failure can be logged against it.
type SamplingError struct {
	Ref string
	Err error
}

func (e *SamplingError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("color sampling failed: %v", e.Err)
	}
	return fmt.Sprintf("color sampling failed for %s: %v", e.Ref, e.Err)
}

func (e *SamplingError) Unwrap() error {
	return e.Err
}
