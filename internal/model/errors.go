package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlertNotFound  = errors.New("alert not found")
	ErrVesselNotFound = errors.New("vessel not found")
	ErrInvalidCatch   = errors.New("invalid catch record")
	ErrInvalidAlert   = errors.New("invalid alert")

	// ErrUnavailable marks transport failures: the provider could not be reached.
	ErrUnavailable = errors.New("state provider unavailable")
)

// ValidateCatch checks the fields a catch must carry before it is stored.
func ValidateCatch(rec CatchRecord) error {
	switch {
	case strings.TrimSpace(rec.Species) == "":
		return fmt.Errorf("%w: species is required", ErrInvalidCatch)
	case rec.WeightKg <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrInvalidCatch)
	case rec.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidCatch)
	}
	return nil
}
