package matching

import (
	"context"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"bloodlink-server/internal/config"
	"bloodlink-server/internal/models"
)

const earthRadiusKM = 6371

// Coordinates is a geographic point used for distance ranking.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Match is one blood bank able to serve a request.
type Match struct {
	BloodBank      models.BloodBank `json:"bloodBank"`
	BloodType      models.BloodType `json:"bloodType"`
	UnitsAvailable int              `json:"unitsAvailable"`
	DistanceKM     *float64         `json:"distanceKm,omitempty"`
}

// Service owns inventory search, reservation, and request fulfillment.
type Service struct {
	DB *gorm.DB

	EscalationWindow time.Duration
	Now              func() time.Time
}

// NewService creates a matching Service with the configured escalation
// window for emergency requests.
func NewService(db *gorm.DB, cfg config.DonationConfig) *Service {
	window := time.Duration(cfg.EmergencyEscalationHours) * time.Hour
	if window <= 0 {
		window = 2 * time.Hour
	}
	return &Service{DB: db, EscalationWindow: window, Now: time.Now}
}

// EffectiveUrgency returns the urgency a new request should carry. A
// request required within the escalation window of its creation is an
// emergency regardless of the caller-supplied level.
func (s *Service) EffectiveUrgency(requested models.UrgencyLevel, requiredBy time.Time) models.UrgencyLevel {
	if requiredBy.Sub(s.Now()) <= s.EscalationWindow {
		return models.UrgencyEmergency
	}
	return requested
}

// FindMatches returns the active blood banks able to serve unitsNeeded
// units compatible with the requested blood type, ranked: exact type
// matches before compatible substitutes, then nearest first when origin
// coordinates are given, otherwise by descending available units.
func (s *Service) FindMatches(ctx context.Context, bloodType models.BloodType, unitsNeeded int, origin *Coordinates) ([]Match, error) {
	if unitsNeeded <= 0 {
		return nil, &InvalidInputError{Field: "unitsNeeded", Detail: "must be a positive number of units"}
	}
	compatible, err := CompatibleDonorTypes(bloodType)
	if err != nil {
		return nil, err
	}

	var inventories []models.BloodInventory
	err = s.DB.WithContext(ctx).
		Joins("BloodBank").
		Where("blood_type IN ?", compatible).
		Where("units_available >= ?", unitsNeeded).
		Where("`BloodBank`.`is_active` = ?", true).
		Find(&inventories).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(inventories))
	for _, inv := range inventories {
		m := Match{
			BloodBank:      inv.BloodBank,
			BloodType:      inv.BloodType,
			UnitsAvailable: inv.UnitsAvailable,
		}
		if origin != nil && inv.BloodBank.Latitude != nil && inv.BloodBank.Longitude != nil {
			d := haversineKM(*origin, Coordinates{Latitude: *inv.BloodBank.Latitude, Longitude: *inv.BloodBank.Longitude})
			m.DistanceKM = &d
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		exactI, exactJ := matches[i].BloodType == bloodType, matches[j].BloodType == bloodType
		if exactI != exactJ {
			return exactI
		}
		if origin != nil {
			di, dj := matches[i].DistanceKM, matches[j].DistanceKM
			switch {
			case di != nil && dj != nil && *di != *dj:
				return *di < *dj
			case di != nil && dj == nil:
				return true
			case di == nil && dj != nil:
				return false
			}
		}
		return matches[i].UnitsAvailable > matches[j].UnitsAvailable
	})

	return matches, nil
}

// haversineKM is the great-circle distance between two points in km.
func haversineKM(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}
