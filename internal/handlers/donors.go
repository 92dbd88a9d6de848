package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/middleware"
	"bloodlink-server/internal/models"
	"bloodlink-server/internal/scheduling"
	"bloodlink-server/internal/utils"
)

// DonorHandler handles donor profile and eligibility requests.
type DonorHandler struct {
	DB          *gorm.DB
	Eligibility *scheduling.Evaluator
}

// NewDonorHandler creates a new DonorHandler.
func NewDonorHandler(db *gorm.DB, eligibility *scheduling.Evaluator) *DonorHandler {
	return &DonorHandler{DB: db, Eligibility: eligibility}
}

// profileForUser loads the donor profile belonging to a user account.
func (h *DonorHandler) profileForUser(userID string) (*models.DonorProfile, error) {
	var profile models.DonorProfile
	err := h.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetMyProfile returns the authenticated donor's profile.
func (h *DonorHandler) GetMyProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := h.profileForUser(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Donor profile fetched successfully", profile)
}

// CheckEligibility evaluates whether the authenticated donor may donate
// right now and, if not, when they next can.
func (h *DonorHandler) CheckEligibility(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := h.profileForUser(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	evaluation, err := h.Eligibility.Evaluate(profile)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Success(c, "Eligibility evaluated successfully", evaluation)
}

// GetDonationHistory returns the authenticated donor's donation records,
// newest first.
func (h *DonorHandler) GetDonationHistory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := h.profileForUser(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var records []models.DonationRecord
	if err := h.DB.Where("donor_id = ?", profile.ID).Order("donation_date desc").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch donation history: "+err.Error())
		return
	}

	utils.Success(c, "Donation history fetched successfully", records)
}

// ListDonors returns all donor profiles (admin).
func (h *DonorHandler) ListDonors(c *gin.Context) {
	var profiles []models.DonorProfile
	if err := h.DB.Preload("User").Order("created_at desc").Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch donors: "+err.Error())
		return
	}
	utils.Success(c, "Donors fetched successfully", profiles)
}

// SetDeferralRequest represents the request body for deferring a donor.
type SetDeferralRequest struct {
	Permanent bool       `json:"permanent"`
	Reason    string     `json:"reason" binding:"required"`
	EndDate   *time.Time `json:"endDate"`
}

// SetDeferral places a temporary or permanent deferral on a donor (admin).
func (h *DonorHandler) SetDeferral(c *gin.Context) {
	donorID := c.Param("id")

	var req SetDeferralRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !req.Permanent && req.EndDate == nil {
		utils.BadRequest(c, "A temporary deferral requires an end date")
		return
	}

	var profile models.DonorProfile
	if err := h.DB.First(&profile, "id = ?", donorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Permanent {
		profile.IsDeferredPermanent = true
		profile.PermanentDeferralReason = req.Reason
	} else {
		profile.IsDeferredTemporary = true
		profile.DeferralEndDate = req.EndDate
		profile.DeferralReason = req.Reason
	}

	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to defer donor: "+err.Error())
		return
	}

	utils.Success(c, "Deferral recorded successfully", profile)
}

// ClearDeferral lifts a donor's temporary deferral (admin). Permanent
// deferrals are not cleared through the API.
func (h *DonorHandler) ClearDeferral(c *gin.Context) {
	donorID := c.Param("id")

	var profile models.DonorProfile
	if err := h.DB.First(&profile, "id = ?", donorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Donor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	profile.IsDeferredTemporary = false
	profile.DeferralEndDate = nil
	profile.DeferralReason = ""

	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to clear deferral: "+err.Error())
		return
	}

	utils.Success(c, "Deferral cleared successfully", profile)
}
