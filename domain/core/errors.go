package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrMalformedInput      = errors.New("malformed input")
	ErrUnknownSample       = errors.New("unknown sample")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrDegenerateSampleSet = errors.New("degenerate sample set")
)

// MalformedInputError reports a structural problem with the ranked list or
// sample set input. Source names which input was at fault ("ranked_list",
// "sample_set:<name>", a file path).
type MalformedInputError struct {
	Source string
	Index  int // -1 when the problem is not tied to one position
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s at index %d: %s", ErrMalformedInput, e.Source, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedInput, e.Source, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// UnknownSampleError is returned when a sample is looked up that the ranked list does not hold
type UnknownSampleError struct {
	SampleID string
}

func (e *UnknownSampleError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownSample, e.SampleID)
}

func (e *UnknownSampleError) Unwrap() error { return ErrUnknownSample }

// InvalidConfigError names the configuration field that failed validation
type InvalidConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DegenerateSampleSetError describes why a sample set could not be scored
// meaningfully. It is attached to results as a flag and never aborts a run.
type DegenerateSampleSetError struct {
	SampleSet string
	Reason    string
}

func (e *DegenerateSampleSetError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrDegenerateSampleSet, e.SampleSet, e.Reason)
}

func (e *DegenerateSampleSetError) Unwrap() error { return ErrDegenerateSampleSet }

// Error constructors with context
func NewMalformedInputError(source string, index int, reason string) error {
	return &MalformedInputError{Source: source, Index: index, Reason: reason}
}

func NewInvalidConfigError(field string, value interface{}, reason string) error {
	return &InvalidConfigError{Field: field, Value: value, Reason: reason}
}

// Error checking helpers
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

func IsUnknownSample(err error) bool {
	return errors.Is(err, ErrUnknownSample)
}
