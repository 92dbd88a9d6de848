package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bloodlink-server/internal/config"
	"bloodlink-server/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedDonor(t *testing.T, db *gorm.DB, bloodType models.BloodType) *models.DonorProfile {
	t.Helper()
	user := models.User{
		Email:     fmt.Sprintf("donor-%s@example.com", uuid.NewString()),
		FirstName: "Test",
		LastName:  "Donor",
		Role:      models.RoleDonor,
	}
	require.NoError(t, user.SetPassword("secret-password"))
	require.NoError(t, db.Create(&user).Error)

	profile := models.DonorProfile{UserID: user.ID, BloodType: bloodType}
	require.NoError(t, db.Create(&profile).Error)
	return &profile
}

func seedBank(t *testing.T, db *gorm.DB, capacity int) *models.BloodBank {
	t.Helper()
	bank := models.BloodBank{
		Name:           "Central Blood Bank",
		Address:        "1 Main St",
		OperatingHours: weekdayHours("09:00", "17:00"),
		Capacity:       capacity,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&bank).Error)
	return &bank
}

func newTestService(t *testing.T, db *gorm.DB, now time.Time) *Service {
	t.Helper()
	s := NewService(db, config.DonationConfig{
		MinIntervalDays:         56,
		CancellationWindowHours: 24,
		SlotCapacityDivisor:     5,
	})
	s.Now = fixedClock(now)
	s.Eligibility.Now = fixedClock(now)
	s.Slots.Now = fixedClock(now)
	return s
}

// now is a Sunday evening so the following Monday is bookable.
var testNow = time.Date(2024, 6, 9, 18, 0, 0, 0, time.UTC)

func TestBookHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)

	at := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	appointment, err := svc.Book(context.Background(), donor.ID, bank.ID, at, "first donation")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, appointment.Status)
	assert.Equal(t, donor.ID, appointment.DonorID)

	var persisted models.Appointment
	require.NoError(t, db.First(&persisted, "id = ?", appointment.ID).Error)
	assert.Equal(t, models.StatusScheduled, persisted.Status)
}

func TestBookIneligibleDonor(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)
	donor := seedDonor(t, db, models.BloodTypeAPositive)
	bank := seedBank(t, db, 20)

	last := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(donor).Update("last_donation_date", last).Error)

	at := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	_, err := svc.Book(context.Background(), donor.ID, bank.ID, at, "")
	var ineligible *IneligibleDonorError
	require.ErrorAs(t, err, &ineligible)
	require.NotNil(t, ineligible.NextEligibleDate)
	assert.Equal(t, time.Date(2024, 2, 26, 9, 0, 0, 0, time.UTC), ineligible.NextEligibleDate.UTC())

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count, "no appointment is persisted on a failed booking")
}

func TestBookFullSlot(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	bank := seedBank(t, db, 20) // 4 per hour

	at := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		donor := seedDonor(t, db, models.BloodTypeOPositive)
		_, err := svc.Book(context.Background(), donor.ID, bank.ID, at.Add(time.Duration(i)*time.Minute), "")
		require.NoError(t, err)
	}

	donor := seedDonor(t, db, models.BloodTypeOPositive)
	_, err := svc.Book(context.Background(), donor.ID, bank.ID, at, "")
	var unavailable *SlotUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// The 11:00 slot is still open.
	_, err = svc.Book(context.Background(), donor.ID, bank.ID, at.Add(time.Hour), "")
	require.NoError(t, err)
}

func TestBookOutsideOperatingHours(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)

	// 08:00 is before opening; Sunday is closed entirely.
	_, err := svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), "")
	var unavailable *SlotUnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, err = svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC), "")
	require.ErrorAs(t, err, &unavailable)
}

func TestBookInactiveBank(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)
	require.NoError(t, db.Model(bank).Update("is_active", false).Error)

	_, err := svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), "")
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestRescheduleOwnershipAndSlot(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)

	at := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	appointment, err := svc.Book(context.Background(), donor.ID, bank.ID, at, "")
	require.NoError(t, err)

	stranger := seedDonor(t, db, models.BloodTypeBNegative)
	newAt := at.Add(2 * time.Hour)

	_, err = svc.Reschedule(context.Background(), Principal{UserID: stranger.UserID, Role: models.RoleDonor}, appointment.ID, newAt, "")
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	owner := Principal{UserID: donor.UserID, Role: models.RoleDonor}
	updated, err := svc.Reschedule(context.Background(), owner, appointment.ID, newAt, "moved")
	require.NoError(t, err)
	assert.True(t, updated.ScheduledAt.Equal(newAt))
	assert.Equal(t, "moved", updated.Notes)
}

func TestRescheduleOwnSlotDoesNotBlockItself(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	bank := seedBank(t, db, 5) // 1 per hour

	donor := seedDonor(t, db, models.BloodTypeOPositive)
	at := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	appointment, err := svc.Book(context.Background(), donor.ID, bank.ID, at, "")
	require.NoError(t, err)

	// Moving within the same (otherwise full) hour must succeed because the
	// appointment's own booking does not count against the slot.
	owner := Principal{UserID: donor.UserID, Role: models.RoleDonor}
	_, err = svc.Reschedule(context.Background(), owner, appointment.ID, at.Add(30*time.Minute), "")
	require.NoError(t, err)
}

func TestCancelWindow(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)
	owner := Principal{UserID: donor.UserID, Role: models.RoleDonor}

	// Monday 10:00 is only 16 hours away from Sunday 18:00.
	soon, err := svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), owner, soon.ID)
	var window *CancellationWindowError
	require.ErrorAs(t, err, &window)

	// Tuesday 10:00 is far enough out.
	later, err := svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	cancelled, err := svc.Cancel(context.Background(), owner, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)
	owner := Principal{UserID: donor.UserID, Role: models.RoleDonor}
	admin := Principal{UserID: "operator", Role: models.RoleAdmin}

	appointment, err := svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), admin, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	var transition *InvalidStateTransitionError

	_, err = svc.Complete(context.Background(), admin, appointment.ID)
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.StatusCompleted, transition.From)

	_, err = svc.Cancel(context.Background(), admin, appointment.ID)
	require.ErrorAs(t, err, &transition)

	_, err = svc.Reschedule(context.Background(), owner, appointment.ID, time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC), "")
	require.ErrorAs(t, err, &transition)
}

func TestCompleteRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	donor := seedDonor(t, db, models.BloodTypeOPositive)
	bank := seedBank(t, db, 20)

	appointment, err := svc.Book(context.Background(), donor.ID, bank.ID, time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), Principal{UserID: donor.UserID, Role: models.RoleDonor}, appointment.ID)
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestAvailabilityReflectsBookings(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, testNow)
	bank := seedBank(t, db, 5) // 1 per hour

	donor := seedDonor(t, db, models.BloodTypeOPositive)
	at := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.Book(context.Background(), donor.ID, bank.ID, at, "")
	require.NoError(t, err)

	slots, err := svc.Availability(context.Background(), bank.ID, at, at)
	require.NoError(t, err)
	require.Len(t, slots, 8)
	for _, s := range slots {
		if s.Hour == 10 {
			assert.False(t, s.Available)
		} else {
			assert.True(t, s.Available)
		}
	}
}
