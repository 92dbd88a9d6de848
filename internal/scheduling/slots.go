package scheduling

import (
	"time"

	"bloodlink-server/internal/models"
)

// DefaultCapacityDivisor converts bank capacity into appointments per hour.
const DefaultCapacityDivisor = 5

// Slot is one bookable hour at a blood bank.
type Slot struct {
	Date      time.Time `json:"date"` // midnight of the slot's day
	Hour      int       `json:"hour"` // 0-23, slot covers [Hour, Hour+1)
	Available bool      `json:"available"`
}

// StartsAt returns the instant the slot begins.
func (s Slot) StartsAt() time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), s.Hour, 0, 0, 0, s.Date.Location())
}

// SlotCalculator derives open appointment slots from a bank's operating
// hours, capacity, and existing appointments.
type SlotCalculator struct {
	CapacityDivisor int
	Now             func() time.Time
}

// NewSlotCalculator creates a SlotCalculator. Non-positive divisors fall
// back to the default of 5.
func NewSlotCalculator(capacityDivisor int) *SlotCalculator {
	if capacityDivisor <= 0 {
		capacityDivisor = DefaultCapacityDivisor
	}
	return &SlotCalculator{CapacityDivisor: capacityDivisor, Now: time.Now}
}

// MaxPerHour returns the maximum concurrent appointments in one hour slot
// for the given bank capacity. Capacity of zero or below is treated as
// capacity for a single appointment so a misconfigured bank never computes
// to zero throughput.
func (c *SlotCalculator) MaxPerHour(capacity int) int {
	perHour := capacity / c.CapacityDivisor
	if perHour < 1 {
		return 1
	}
	return perHour
}

// ComputeSlots generates the slots for every day in [from, to] inclusive,
// in chronological order. Days on which the bank is closed emit no slots.
// A slot is available iff the count of existing non-cancelled appointments
// in its hour is below the bank's per-hour maximum and the slot starts
// strictly in the future.
func (c *SlotCalculator) ComputeSlots(bank *models.BloodBank, from, to time.Time, existing []models.Appointment) ([]Slot, error) {
	slots := []Slot{}
	if to.Before(from) {
		return slots, nil
	}

	// Bucket existing appointments by the hour they fall in.
	booked := make(map[int64]int, len(existing))
	for _, apt := range existing {
		if apt.Status == models.StatusCancelled {
			continue
		}
		booked[apt.ScheduledAt.Truncate(time.Hour).Unix()]++
	}

	maxPerHour := c.MaxPerHour(bank.Capacity)
	now := c.Now()

	startDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	endDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		hours := bank.OperatingHours.ForWeekday(day.Weekday())
		if hours.IsClosed() {
			continue
		}
		openHour, err := hours.OpenHour()
		if err != nil {
			return nil, &InvalidInputError{Field: "operatingHours", Detail: err.Error()}
		}
		closeHour, err := hours.CloseHour()
		if err != nil {
			return nil, &InvalidInputError{Field: "operatingHours", Detail: err.Error()}
		}

		for hour := openHour; hour < closeHour; hour++ {
			slot := Slot{Date: day, Hour: hour}
			start := slot.StartsAt()
			count := booked[start.Truncate(time.Hour).Unix()]
			slot.Available = count < maxPerHour && start.After(now)
			slots = append(slots, slot)
		}
	}

	return slots, nil
}
