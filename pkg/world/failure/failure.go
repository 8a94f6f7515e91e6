// Package failure defines the error kinds returned by world generation.
package failure

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConfiguration marks invalid dimensions or parameters.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstreamContract marks inputs that break the foundation contract.
	ErrUpstreamContract = errors.New("upstream contract violation")
	// ErrNumericalDivergence marks state that escaped its numeric range.
	ErrNumericalDivergence = errors.New("numerical divergence")
	// ErrResourceExhaustion marks an exceeded iteration or time budget.
	ErrResourceExhaustion = errors.New("resource exhaustion")
)

// StageError records which stage failed and the inputs needed to reproduce it.
type StageError struct {
	Stage  string
	Seed   int64
	Params any
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (seed %d): %v", e.Stage, e.Seed, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Configf returns an ErrConfiguration wrapping a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Contractf returns an ErrUpstreamContract wrapping a formatted message.
func Contractf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstreamContract, fmt.Sprintf(format, args...))
}

// Divergencef returns an ErrNumericalDivergence wrapping a formatted message.
func Divergencef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNumericalDivergence, fmt.Sprintf(format, args...))
}

// Exhaustedf returns an ErrResourceExhaustion wrapping a formatted message.
func Exhaustedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResourceExhaustion, fmt.Sprintf(format, args...))
}

// Finite reports an ErrConfiguration for the first NaN or infinite value.
func Finite(names []string, vals ...float64) error {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			name := fmt.Sprintf("value %d", i)
			if i < len(names) {
				name = names[i]
			}
			return Configf("%s is not finite", name)
		}
	}
	return nil
}
