package handlers

import (
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/models"
	"bloodlink-server/internal/utils"
)

// DonationHandler handles recording completed donations.
type DonationHandler struct {
	DB *gorm.DB
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(db *gorm.DB) *DonationHandler {
	return &DonationHandler{DB: db}
}

// RecordDonationRequest represents the request body for recording a
// completed donation.
type RecordDonationRequest struct {
	DonorID       string     `json:"donorId" binding:"required,uuid"`
	BloodBankID   string     `json:"bloodBankId" binding:"required,uuid"`
	AppointmentID string     `json:"appointmentId"`
	DonationDate  *time.Time `json:"donationDate"`
	// UnitsCollected is in whole-blood units, 0.1 to 2.0 in steps of 0.1.
	UnitsCollected float64  `json:"unitsCollected" binding:"required"`
	HemoglobinGDL  *float64 `json:"hemoglobinGdl"`
	BloodPressure  string   `json:"bloodPressure"`
	PulseBPM       *int     `json:"pulseBpm"`
	WeightKG       *float64 `json:"weightKg"`
	Notes          string   `json:"notes"`
}

func validUnitsCollected(units float64) bool {
	if units < 0.1 || units > 2.0 {
		return false
	}
	// Must land on a 0.1 step.
	scaled := units * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

// RecordDonation records a completed donation (admin/operator). In one
// transaction it creates the donation record, advances the donor's last
// donation date and count, and adds the collected units to the bank's
// available inventory.
func (h *DonationHandler) RecordDonation(c *gin.Context) {
	var req RecordDonationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !validUnitsCollected(req.UnitsCollected) {
		utils.BadRequest(c, "unitsCollected must be between 0.1 and 2.0 in steps of 0.1")
		return
	}

	donationDate := time.Now()
	if req.DonationDate != nil {
		donationDate = *req.DonationDate
	}

	var record models.DonationRecord
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.DonorProfile
		if err := tx.First(&profile, "id = ?", req.DonorID).Error; err != nil {
			return err
		}
		var bank models.BloodBank
		if err := tx.First(&bank, "id = ?", req.BloodBankID).Error; err != nil {
			return err
		}

		var appointmentID *string
		if req.AppointmentID != "" {
			var appointment models.Appointment
			if err := tx.First(&appointment, "id = ?", req.AppointmentID).Error; err != nil {
				return err
			}
			if appointment.DonorID != profile.ID {
				return gorm.ErrRecordNotFound
			}
			appointmentID = &appointment.ID
		}

		record = models.DonationRecord{
			DonorID:        profile.ID,
			BloodBankID:    bank.ID,
			AppointmentID:  appointmentID,
			DonationDate:   donationDate,
			BloodType:      profile.BloodType,
			UnitsCollected: req.UnitsCollected,
			HemoglobinGDL:  req.HemoglobinGDL,
			BloodPressure:  req.BloodPressure,
			PulseBPM:       req.PulseBPM,
			WeightKG:       req.WeightKG,
			Notes:          req.Notes,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		profile.LastDonationDate = &donationDate
		profile.TotalDonations++
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		// Collected whole-blood units land in the bank's stock.
		var inventory models.BloodInventory
		err := tx.Where("blood_bank_id = ? AND blood_type = ?", bank.ID, profile.BloodType).First(&inventory).Error
		if err == gorm.ErrRecordNotFound {
			inventory = models.BloodInventory{BloodBankID: bank.ID, BloodType: profile.BloodType}
		} else if err != nil {
			return err
		}
		inventory.UnitsAvailable += int(math.Round(req.UnitsCollected))
		return tx.Save(&inventory).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donor, blood bank, or appointment not found")
		} else {
			utils.InternalServerError(c, "Failed to record donation: "+err.Error())
		}
		return
	}

	utils.Created(c, "Donation recorded successfully", record)
}

// GetDonationsForDonor lists the donation records of one donor (admin).
func (h *DonationHandler) GetDonationsForDonor(c *gin.Context) {
	var records []models.DonationRecord
	if err := h.DB.Where("donor_id = ?", c.Param("id")).Order("donation_date desc").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch donation records: "+err.Error())
		return
	}
	utils.Success(c, "Donation records fetched successfully", records)
}

// UpdateDonationNotesRequest represents the request body for editing the
// notes on a donation record. Everything else on a record is immutable.
type UpdateDonationNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// UpdateDonationNotes updates only the notes of a donation record (admin).
func (h *DonationHandler) UpdateDonationNotes(c *gin.Context) {
	var req UpdateDonationNotesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var record models.DonationRecord
	if err := h.DB.First(&record, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donation record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	record.Notes = req.Notes
	if err := h.DB.Save(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update donation record: "+err.Error())
		return
	}

	utils.Success(c, "Donation notes updated successfully", record)
}
