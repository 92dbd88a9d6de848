package scheduling

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bloodlink-server/internal/config"
	"bloodlink-server/internal/models"
)

// Principal identifies the acting user for ownership checks.
type Principal struct {
	UserID string
	Role   models.Role
}

// Authorizer answers whether a principal may manage an entity owned by the
// given user. It is the seam to the auth layer; the default implementation
// grants admins and owners.
type Authorizer interface {
	CanManage(p Principal, ownerUserID string) bool
}

// RoleAuthorizer is the default Authorizer: admins may manage anything,
// everyone else only their own entities.
type RoleAuthorizer struct{}

// CanManage implements Authorizer.
func (RoleAuthorizer) CanManage(p Principal, ownerUserID string) bool {
	return p.Role == models.RoleAdmin || p.UserID == ownerUserID
}

// Service owns the appointment lifecycle: booking, rescheduling,
// cancellation, and completion. All mutations run inside a database
// transaction so concurrent bookings never overfill a slot.
type Service struct {
	DB          *gorm.DB
	Eligibility *Evaluator
	Slots       *SlotCalculator
	Auth        Authorizer

	CancellationWindow time.Duration
	Now                func() time.Time
}

// NewService creates an appointment Service with the configured business
// rules and the default role-based authorizer.
func NewService(db *gorm.DB, cfg config.DonationConfig) *Service {
	window := time.Duration(cfg.CancellationWindowHours) * time.Hour
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Service{
		DB:                 db,
		Eligibility:        NewEvaluator(cfg.MinIntervalDays),
		Slots:              NewSlotCalculator(cfg.SlotCapacityDivisor),
		Auth:               RoleAuthorizer{},
		CancellationWindow: window,
		Now:                time.Now,
	}
}

// Availability returns the slots for a bank over [from, to].
func (s *Service) Availability(ctx context.Context, bloodBankID string, from, to time.Time) ([]Slot, error) {
	var bank models.BloodBank
	if err := s.DB.WithContext(ctx).First(&bank, "id = ?", bloodBankID).Error; err != nil {
		return nil, err
	}
	if !bank.IsActive {
		return nil, &InvalidInputError{Field: "bloodBankId", Detail: "blood bank is not active"}
	}

	var existing []models.Appointment
	err := s.DB.WithContext(ctx).
		Where("blood_bank_id = ? AND status <> ?", bloodBankID, models.StatusCancelled).
		Where("scheduled_at >= ? AND scheduled_at < ?", startOfDay(from), startOfDay(to).AddDate(0, 0, 1)).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}

	return s.Slots.ComputeSlots(&bank, from, to, existing)
}

// Book creates a scheduled appointment for the donor at the given time.
// Preconditions, first failure wins: donor eligibility, slot availability
// (covers closed hours and fully booked slots), time strictly in the future.
func (s *Service) Book(ctx context.Context, donorID, bloodBankID string, at time.Time, notes string) (*models.Appointment, error) {
	var profile models.DonorProfile
	if err := s.DB.WithContext(ctx).First(&profile, "id = ?", donorID).Error; err != nil {
		return nil, err
	}

	evaluation, err := s.Eligibility.Evaluate(&profile)
	if err != nil {
		return nil, err
	}
	if !evaluation.Eligible {
		return nil, &IneligibleDonorError{
			Reasons:          evaluation.Reasons,
			NextEligibleDate: evaluation.NextEligibleDate,
		}
	}

	var appointment *models.Appointment
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkSlot(tx, bloodBankID, at, ""); err != nil {
			return err
		}
		if !at.After(s.Now()) {
			return &InvalidInputError{Field: "scheduledAt", Detail: "appointment time must be in the future"}
		}

		appointment = &models.Appointment{
			DonorID:     donorID,
			BloodBankID: bloodBankID,
			ScheduledAt: at,
			Status:      models.StatusScheduled,
			Notes:       notes,
		}
		return tx.Create(appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// Reschedule moves a scheduled appointment to a new time. Only the owning
// donor or an admin may reschedule, and the new time must fall within an
// available slot.
func (s *Service) Reschedule(ctx context.Context, p Principal, appointmentID string, newAt time.Time, notes string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadForUpdate(tx, appointmentID, &appointment); err != nil {
			return err
		}
		if !s.Auth.CanManage(p, appointment.Donor.UserID) {
			return &ForbiddenError{Detail: "only the owning donor or an admin may reschedule this appointment"}
		}
		if appointment.Status != models.StatusScheduled {
			return &InvalidStateTransitionError{From: appointment.Status, To: models.StatusScheduled}
		}
		// The appointment being moved must not count against its new slot.
		if err := s.checkSlot(tx, appointment.BloodBankID, newAt, appointment.ID); err != nil {
			return err
		}
		if !newAt.After(s.Now()) {
			return &InvalidInputError{Field: "scheduledAt", Detail: "appointment time must be in the future"}
		}

		appointment.ScheduledAt = newAt
		if notes != "" {
			appointment.Notes = notes
		}
		return tx.Save(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Cancel transitions a scheduled appointment to cancelled. The owning donor
// or an admin may cancel, and only more than the cancellation window before
// the appointment time.
func (s *Service) Cancel(ctx context.Context, p Principal, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadForUpdate(tx, appointmentID, &appointment); err != nil {
			return err
		}
		if !s.Auth.CanManage(p, appointment.Donor.UserID) {
			return &ForbiddenError{Detail: "only the owning donor or an admin may cancel this appointment"}
		}
		if appointment.Status != models.StatusScheduled {
			return &InvalidStateTransitionError{From: appointment.Status, To: models.StatusCancelled}
		}
		if appointment.ScheduledAt.Sub(s.Now()) <= s.CancellationWindow {
			return &CancellationWindowError{ScheduledAt: appointment.ScheduledAt, Window: s.CancellationWindow}
		}

		appointment.Status = models.StatusCancelled
		return tx.Save(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Complete transitions a scheduled appointment to completed, typically at
// check-in. Only admins may complete appointments. Completion is the point
// after which the caller records the donation.
func (s *Service) Complete(ctx context.Context, p Principal, appointmentID string) (*models.Appointment, error) {
	if p.Role != models.RoleAdmin {
		return nil, &ForbiddenError{Detail: "only an admin may complete an appointment"}
	}

	var appointment models.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadForUpdate(tx, appointmentID, &appointment); err != nil {
			return err
		}
		if appointment.Status != models.StatusScheduled {
			return &InvalidStateTransitionError{From: appointment.Status, To: models.StatusCompleted}
		}

		appointment.Status = models.StatusCompleted
		return tx.Save(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// loadForUpdate fetches an appointment with its donor under a row lock.
func (s *Service) loadForUpdate(tx *gorm.DB, appointmentID string, out *models.Appointment) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Donor").
		First(out, "id = ?", appointmentID).Error; err != nil {
		return fmt.Errorf("loading appointment %s: %w", appointmentID, err)
	}
	return nil
}

// checkSlot verifies that at falls within an available slot at the bank,
// not counting excludeAppointmentID against the slot's occupancy.
func (s *Service) checkSlot(tx *gorm.DB, bloodBankID string, at time.Time, excludeAppointmentID string) error {
	var bank models.BloodBank
	if err := tx.First(&bank, "id = ?", bloodBankID).Error; err != nil {
		return err
	}
	if !bank.IsActive {
		return &InvalidInputError{Field: "bloodBankId", Detail: "blood bank is not active"}
	}

	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("blood_bank_id = ? AND status <> ?", bloodBankID, models.StatusCancelled).
		Where("scheduled_at >= ? AND scheduled_at < ?", startOfDay(at), startOfDay(at).AddDate(0, 0, 1))
	if excludeAppointmentID != "" {
		query = query.Where("id <> ?", excludeAppointmentID)
	}
	var existing []models.Appointment
	if err := query.Find(&existing).Error; err != nil {
		return err
	}

	slots, err := s.Slots.ComputeSlots(&bank, at, at, existing)
	if err != nil {
		return err
	}

	target := at.Truncate(time.Hour)
	for _, slot := range slots {
		if slot.StartsAt().Truncate(time.Hour).Equal(target) {
			if !slot.Available {
				return &SlotUnavailableError{BloodBankID: bloodBankID, At: at, Reason: "slot is fully booked or already past"}
			}
			return nil
		}
	}
	return &SlotUnavailableError{BloodBankID: bloodBankID, At: at, Reason: "outside operating hours"}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
