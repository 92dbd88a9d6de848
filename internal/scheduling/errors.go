package scheduling

import (
	"fmt"
	"strings"
	"time"

	"bloodlink-server/internal/models"
)

// InvalidInputError reports malformed or out-of-range input, e.g. a bad
// time of day in operating hours or a booking time in the past.
type InvalidInputError struct {
	Field  string
	Detail string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// IneligibleDonorError is returned when a booking is attempted for a donor
// who is not currently eligible to donate.
type IneligibleDonorError struct {
	Reasons          []string
	NextEligibleDate *time.Time
}

func (e *IneligibleDonorError) Error() string {
	msg := "donor is not eligible to donate: " + strings.Join(e.Reasons, "; ")
	if e.NextEligibleDate != nil {
		msg += fmt.Sprintf(" (next eligible %s)", e.NextEligibleDate.Format("2006-01-02"))
	}
	return msg
}

// SlotUnavailableError is returned when the requested time does not fall
// within an available slot, either because the bank is closed at that time
// or because the hour is fully booked.
type SlotUnavailableError struct {
	BloodBankID string
	At          time.Time
	Reason      string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot at %s is unavailable: %s", e.At.Format(time.RFC3339), e.Reason)
}

// ForbiddenError is returned when the acting principal may not modify the
// appointment in question.
type ForbiddenError struct {
	Detail string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Detail
}

// CancellationWindowError is returned when a cancellation is attempted too
// close to the appointment time.
type CancellationWindowError struct {
	ScheduledAt time.Time
	Window      time.Duration
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("appointment at %s can only be cancelled more than %s in advance",
		e.ScheduledAt.Format(time.RFC3339), e.Window)
}

// InvalidStateTransitionError is returned when an appointment is not in a
// state that allows the requested transition.
type InvalidStateTransitionError struct {
	From models.AppointmentStatus
	To   models.AppointmentStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %q to %q", e.From, e.To)
}
