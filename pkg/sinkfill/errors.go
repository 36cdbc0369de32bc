package sinkfill

import (
	"errors"
	"fmt"

	errs "github.com/hurstaa/landlab/pkg/errors"
)

var (
	errUnstable         = errors.New("drainage directions changed")
	errDrainageReversed = errors.New("gradient reverses drainage at lake margin")
)

// ConvergenceError is returned by FillPits when no gradient tried keeps the
// drainage around the filled lakes intact.
type ConvergenceError struct {
	Attempts int     // unstable attempts made
	Slope    float64 // base gradient of the last attempt
	Err      error   // cause reported by the last attempt
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no stable sloped surface after %d attempts (last slope %g)", e.Attempts, e.Slope)
}

// Unwrap returns the cause of the last failed attempt.
func (e *ConvergenceError) Unwrap() error { return e.Err }

// Code returns errs.ErrCodeConvergence.
func (e *ConvergenceError) Code() errs.Code { return errs.ErrCodeConvergence }
