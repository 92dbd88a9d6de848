package matching

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bloodlink-server/internal/models"
)

// Reserve atomically moves units from available to reserved at one bank.
// It returns false without mutating anything when the available stock is
// insufficient; a reservation is all-or-nothing.
func (s *Service) Reserve(ctx context.Context, bloodBankID string, bloodType models.BloodType, units int) (bool, error) {
	if units <= 0 {
		return false, &InvalidInputError{Field: "units", Detail: "must be a positive number of units"}
	}
	if !bloodType.IsValid() {
		return false, &InvalidInputError{Field: "bloodType", Detail: "unsupported blood type " + string(bloodType)}
	}

	reserved := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inventory, err := lockInventory(tx, bloodBankID, bloodType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // no stock row means nothing to reserve
			}
			return err
		}
		if inventory.UnitsAvailable < units {
			return nil
		}

		inventory.UnitsAvailable -= units
		inventory.UnitsReserved += units
		if err := tx.Save(inventory).Error; err != nil {
			return err
		}
		reserved = true
		return nil
	})
	return reserved, err
}

// Release moves previously reserved units back to available. The amount
// released is clamped to what is actually reserved so the reserved count
// never goes negative.
func (s *Service) Release(ctx context.Context, bloodBankID string, bloodType models.BloodType, units int) error {
	if units <= 0 {
		return &InvalidInputError{Field: "units", Detail: "must be a positive number of units"}
	}
	if !bloodType.IsValid() {
		return &InvalidInputError{Field: "bloodType", Detail: "unsupported blood type " + string(bloodType)}
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inventory, err := lockInventory(tx, bloodBankID, bloodType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		toRelease := units
		if toRelease > inventory.UnitsReserved {
			toRelease = inventory.UnitsReserved
		}
		if toRelease == 0 {
			return nil
		}
		inventory.UnitsReserved -= toRelease
		inventory.UnitsAvailable += toRelease
		return tx.Save(inventory).Error
	})
}

// Fulfill marks a pending request as fulfilled by a bank and reserves the
// provided units of the request's exact blood type. The whole sequence is
// one transaction: any failing precondition aborts with no state change.
func (s *Service) Fulfill(ctx context.Context, requestID, bloodBankID string, unitsProvided int, notes string) (*models.BloodRequest, error) {
	if unitsProvided <= 0 {
		return nil, &InvalidInputError{Field: "unitsProvided", Detail: "must be a positive number of units"}
	}

	var request models.BloodRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, "id = ?", requestID).Error; err != nil {
			return err
		}
		if request.Status != models.RequestPending {
			return &InvalidStateError{Expected: models.RequestPending, Actual: request.Status}
		}

		inventory, err := lockInventory(tx, bloodBankID, request.BloodType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InsufficientInventoryError{
					BloodBankID: bloodBankID,
					BloodType:   request.BloodType,
					Requested:   unitsProvided,
					Available:   0,
				}
			}
			return err
		}
		if inventory.UnitsAvailable < unitsProvided {
			return &InsufficientInventoryError{
				BloodBankID: bloodBankID,
				BloodType:   request.BloodType,
				Requested:   unitsProvided,
				Available:   inventory.UnitsAvailable,
			}
		}

		inventory.UnitsAvailable -= unitsProvided
		inventory.UnitsReserved += unitsProvided
		if err := tx.Save(inventory).Error; err != nil {
			return err
		}

		now := s.Now()
		request.Status = models.RequestFulfilled
		request.FulfilledByID = &bloodBankID
		request.FulfilledAt = &now
		if notes != "" {
			request.Notes = notes
		}
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// lockInventory fetches the inventory row for (bank, blood type) under a
// row lock.
func lockInventory(tx *gorm.DB, bloodBankID string, bloodType models.BloodType) (*models.BloodInventory, error) {
	var inventory models.BloodInventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("blood_bank_id = ? AND blood_type = ?", bloodBankID, bloodType).
		First(&inventory).Error
	if err != nil {
		return nil, err
	}
	return &inventory, nil
}
