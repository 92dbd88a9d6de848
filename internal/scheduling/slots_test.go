package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink-server/internal/models"
)

func weekdayHours(open, close string) models.WeeklyHours {
	var hours models.WeeklyHours
	for day := time.Monday; day <= time.Friday; day++ {
		hours[int(day)] = models.DayHours{Open: open, Close: close}
	}
	return hours
}

func testBank(capacity int) *models.BloodBank {
	return &models.BloodBank{
		Name:           "Central Blood Bank",
		OperatingHours: weekdayHours("09:00", "17:00"),
		Capacity:       capacity,
		IsActive:       true,
	}
}

func appointmentAt(at time.Time, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{ScheduledAt: at, Status: status}
}

func TestComputeSlotsCapacityScenario(t *testing.T) {
	// Capacity 20 allows 4 appointments per hour. Four scheduled
	// appointments at 10:00 on 2024-06-10 fill that hour; 11:00 stays open.
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) // a Monday
	c := NewSlotCalculator(5)
	c.Now = fixedClock(day.Add(-12 * time.Hour))

	var existing []models.Appointment
	for i := 0; i < 4; i++ {
		existing = append(existing, appointmentAt(day.Add(10*time.Hour), models.StatusScheduled))
	}

	slots, err := c.ComputeSlots(testBank(20), day, day, existing)
	require.NoError(t, err)
	require.Len(t, slots, 8, "one slot per hour between 09:00 and 17:00")

	byHour := map[int]Slot{}
	for _, s := range slots {
		byHour[s.Hour] = s
	}
	assert.False(t, byHour[10].Available, "hour 10 is fully booked")
	assert.True(t, byHour[11].Available, "hour 11 has no appointments")
}

func TestComputeSlotsCancelledAppointmentsDoNotCount(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	c := NewSlotCalculator(5)
	c.Now = fixedClock(day.Add(-12 * time.Hour))

	existing := []models.Appointment{
		appointmentAt(day.Add(10*time.Hour), models.StatusCancelled),
		appointmentAt(day.Add(10*time.Hour), models.StatusCancelled),
		appointmentAt(day.Add(10*time.Hour), models.StatusCancelled),
		appointmentAt(day.Add(10*time.Hour), models.StatusCancelled),
	}

	slots, err := c.ComputeSlots(testBank(20), day, day, existing)
	require.NoError(t, err)
	for _, s := range slots {
		assert.True(t, s.Available, "hour %d should be free", s.Hour)
	}
}

func TestComputeSlotsPastHoursNeverAvailable(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	c := NewSlotCalculator(5)
	// Midday: the morning slots are already gone.
	c.Now = fixedClock(day.Add(12*time.Hour + 30*time.Minute))

	slots, err := c.ComputeSlots(testBank(20), day, day, nil)
	require.NoError(t, err)
	for _, s := range slots {
		if s.Hour <= 12 {
			assert.False(t, s.Available, "hour %d is in the past", s.Hour)
		} else {
			assert.True(t, s.Available, "hour %d is in the future", s.Hour)
		}
	}
}

func TestComputeSlotsClosedDayEmitsNothing(t *testing.T) {
	sunday := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	c := NewSlotCalculator(5)
	c.Now = fixedClock(sunday.AddDate(0, 0, -1))

	slots, err := c.ComputeSlots(testBank(20), sunday, sunday, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsChronologicalAcrossDays(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	c := NewSlotCalculator(5)
	c.Now = fixedClock(monday.Add(-12 * time.Hour))

	slots, err := c.ComputeSlots(testBank(20), monday, tuesday, nil)
	require.NoError(t, err)
	require.Len(t, slots, 16)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].StartsAt().Before(slots[i].StartsAt()),
			"slots must be chronological")
	}
}

func TestComputeSlotsEmptyRange(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	c := NewSlotCalculator(5)

	slots, err := c.ComputeSlots(testBank(20), day, day.AddDate(0, 0, -1), nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsIdempotent(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	c := NewSlotCalculator(5)
	c.Now = fixedClock(day.Add(-12 * time.Hour))

	existing := []models.Appointment{
		appointmentAt(day.Add(9*time.Hour), models.StatusScheduled),
	}
	first, err := c.ComputeSlots(testBank(20), day, day, existing)
	require.NoError(t, err)
	second, err := c.ComputeSlots(testBank(20), day, day, existing)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMaxPerHourFloorsCapacity(t *testing.T) {
	c := NewSlotCalculator(5)

	assert.Equal(t, 4, c.MaxPerHour(20))
	assert.Equal(t, 1, c.MaxPerHour(5))
	assert.Equal(t, 1, c.MaxPerHour(4), "sub-divisor capacity still yields one slot")
	assert.Equal(t, 1, c.MaxPerHour(0), "zero capacity is floored, not zeroed")
	assert.Equal(t, 1, c.MaxPerHour(-3))
}

func TestComputeSlotsRejectsMalformedHours(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	c := NewSlotCalculator(5)
	c.Now = fixedClock(day.Add(-12 * time.Hour))

	bank := testBank(20)
	bank.OperatingHours[int(time.Monday)] = models.DayHours{Open: "nine", Close: "17:00"}

	_, err := c.ComputeSlots(bank, day, day, nil)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}
