package matching

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
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

func newTestService(t *testing.T, db *gorm.DB, now time.Time) *Service {
	t.Helper()
	s := NewService(db, config.DonationConfig{EmergencyEscalationHours: 2})
	s.Now = func() time.Time { return now }
	return s
}

func seedBank(t *testing.T, db *gorm.DB, name string, coords *Coordinates) *models.BloodBank {
	t.Helper()
	bank := models.BloodBank{
		Name:     name,
		Address:  "1 Main St",
		Capacity: 20,
		IsActive: true,
	}
	if coords != nil {
		bank.Latitude = &coords.Latitude
		bank.Longitude = &coords.Longitude
	}
	require.NoError(t, db.Create(&bank).Error)
	return &bank
}

func seedInventory(t *testing.T, db *gorm.DB, bank *models.BloodBank, bloodType models.BloodType, available, reserved int) *models.BloodInventory {
	t.Helper()
	inv := models.BloodInventory{
		BloodBankID:    bank.ID,
		BloodType:      bloodType,
		UnitsAvailable: available,
		UnitsReserved:  reserved,
	}
	require.NoError(t, db.Create(&inv).Error)
	return &inv
}

var matchNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestFindMatchesRequiresFullQuantityOfOneType(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, matchNow)
	bank := seedBank(t, db, "Central", nil)
	seedInventory(t, db, bank, models.BloodTypeONegative, 3, 0)
	seedInventory(t, db, bank, models.BloodTypeOPositive, 20, 0)

	// O- recipients can only take O-; 3 units on hand cannot cover 5 even
	// though plenty of O+ sits next to it.
	matches, err := svc.FindMatches(context.Background(), models.BloodTypeONegative, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = svc.FindMatches(context.Background(), models.BloodTypeONegative, 3, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, models.BloodTypeONegative, matches[0].BloodType)
}

func TestFindMatchesRanking(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, matchNow)

	smallExact := seedBank(t, db, "Small Exact", nil)
	seedInventory(t, db, smallExact, models.BloodTypeAPositive, 6, 0)
	largeExact := seedBank(t, db, "Large Exact", nil)
	seedInventory(t, db, largeExact, models.BloodTypeAPositive, 40, 0)
	substitute := seedBank(t, db, "Substitute", nil)
	seedInventory(t, db, substitute, models.BloodTypeONegative, 100, 0)

	matches, err := svc.FindMatches(context.Background(), models.BloodTypeAPositive, 5, nil)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Exact-type banks come first regardless of stock, ordered by units
	// descending; the compatible substitute trails them.
	assert.Equal(t, "Large Exact", matches[0].BloodBank.Name)
	assert.Equal(t, "Small Exact", matches[1].BloodBank.Name)
	assert.Equal(t, "Substitute", matches[2].BloodBank.Name)
	assert.Equal(t, models.BloodTypeONegative, matches[2].BloodType)
}

func TestFindMatchesDistanceOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, matchNow)

	far := seedBank(t, db, "Far", &Coordinates{Latitude: 0, Longitude: 5})
	seedInventory(t, db, far, models.BloodTypeBPositive, 50, 0)
	near := seedBank(t, db, "Near", &Coordinates{Latitude: 0, Longitude: 1})
	seedInventory(t, db, near, models.BloodTypeBPositive, 10, 0)
	unknown := seedBank(t, db, "Unlocated", nil)
	seedInventory(t, db, unknown, models.BloodTypeBPositive, 80, 0)

	origin := &Coordinates{Latitude: 0, Longitude: 0}
	matches, err := svc.FindMatches(context.Background(), models.BloodTypeBPositive, 5, origin)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "Near", matches[0].BloodBank.Name)
	assert.Equal(t, "Far", matches[1].BloodBank.Name)
	assert.Equal(t, "Unlocated", matches[2].BloodBank.Name, "banks without coordinates rank last")
	require.NotNil(t, matches[0].DistanceKM)
	assert.InDelta(t, 111.19, *matches[0].DistanceKM, 0.5)
	assert.Nil(t, matches[2].DistanceKM)
}

func TestFindMatchesSkipsInactiveBanks(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, matchNow)

	bank := seedBank(t, db, "Shut Down", nil)
	seedInventory(t, db, bank, models.BloodTypeABNegative, 50, 0)
	require.NoError(t, db.Model(bank).Update("is_active", false).Error)

	matches, err := svc.FindMatches(context.Background(), models.BloodTypeABNegative, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesInvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, matchNow)

	var invalid *InvalidInputError
	_, err := svc.FindMatches(context.Background(), models.BloodTypeAPositive, 0, nil)
	require.ErrorAs(t, err, &invalid)

	_, err = svc.FindMatches(context.Background(), "Z-", 5, nil)
	require.ErrorAs(t, err, &invalid)
}

func TestEffectiveUrgency(t *testing.T) {
	svc := newTestService(t, nil, matchNow)

	cases := []struct {
		name       string
		requested  models.UrgencyLevel
		requiredBy time.Time
		want       models.UrgencyLevel
	}{
		{"routine far out stays routine", models.UrgencyRoutine, matchNow.Add(48 * time.Hour), models.UrgencyRoutine},
		{"urgent far out stays urgent", models.UrgencyUrgent, matchNow.Add(6 * time.Hour), models.UrgencyUrgent},
		{"routine inside window escalates", models.UrgencyRoutine, matchNow.Add(90 * time.Minute), models.UrgencyEmergency},
		{"exactly at window escalates", models.UrgencyRoutine, matchNow.Add(2 * time.Hour), models.UrgencyEmergency},
		{"just past window does not", models.UrgencyRoutine, matchNow.Add(2*time.Hour + time.Minute), models.UrgencyRoutine},
		{"already overdue escalates", models.UrgencyUrgent, matchNow.Add(-time.Hour), models.UrgencyEmergency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.EffectiveUrgency(tc.requested, tc.requiredBy))
		})
	}
}

func TestHaversine(t *testing.T) {
	// One degree of longitude at the equator is about 111.19 km.
	d := haversineKM(Coordinates{0, 0}, Coordinates{0, 1})
	assert.InDelta(t, 111.19, d, 0.05)

	assert.Zero(t, haversineKM(Coordinates{51.5, -0.12}, Coordinates{51.5, -0.12}))

	// London to Paris is roughly 344 km.
	d = haversineKM(Coordinates{51.5074, -0.1278}, Coordinates{48.8566, 2.3522})
	assert.InDelta(t, 344, d, 5)
}
