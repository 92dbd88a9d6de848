package matching

import (
	"fmt"

	"bloodlink-server/internal/models"
)

// InvalidInputError reports malformed or out-of-range input, e.g. an
// unsupported blood type or a non-positive unit count.
type InvalidInputError struct {
	Field  string
	Detail string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// InsufficientInventoryError is returned when a reservation or fulfillment
// asks for more units than the inventory has available.
type InsufficientInventoryError struct {
	BloodBankID string
	BloodType   models.BloodType
	Requested   int
	Available   int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient %s inventory at bank %s: requested %d, available %d",
		e.BloodType, e.BloodBankID, e.Requested, e.Available)
}

// InvalidStateError is returned when a request is not in the state the
// operation expects, e.g. fulfilling a request that is no longer pending.
type InvalidStateError struct {
	Expected models.RequestStatus
	Actual   models.RequestStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("request is %q, expected %q", e.Actual, e.Expected)
}
