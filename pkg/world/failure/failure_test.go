package failure

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestStageErrorUnwrap(t *testing.T) {
	err := &StageError{Stage: "erosion", Seed: 7, Err: Divergencef("particle %d velocity NaN", 3)}
	var wrapped error = fmt.Errorf("generate: %w", err)

	if !errors.Is(wrapped, ErrNumericalDivergence) {
		t.Fatal("errors.Is should see the sentinel through StageError")
	}
	var se *StageError
	if !errors.As(wrapped, &se) || se.Stage != "erosion" || se.Seed != 7 {
		t.Fatalf("errors.As = %+v", se)
	}
	if !strings.Contains(err.Error(), "erosion") || !strings.Contains(err.Error(), "seed 7") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestStageErrorCanceled(t *testing.T) {
	err := &StageError{Stage: "temperature", Err: context.Canceled}
	if !errors.Is(err, context.Canceled) {
		t.Fatal("context.Canceled should unwrap")
	}
}

func TestFinite(t *testing.T) {
	if err := Finite([]string{"a", "b"}, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Finite([]string{"a", "b"}, 1, math.Inf(1))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "b") {
		t.Errorf("error should name the field: %v", err)
	}
	if err := Finite(nil, math.NaN()); err == nil {
		t.Fatal("NaN must be rejected")
	}
}
