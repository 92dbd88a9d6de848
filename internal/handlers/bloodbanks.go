package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/models"
	"bloodlink-server/internal/utils"
)

// BloodBankHandler handles blood bank onboarding and profile requests.
type BloodBankHandler struct {
	DB *gorm.DB
}

// NewBloodBankHandler creates a new BloodBankHandler.
func NewBloodBankHandler(db *gorm.DB) *BloodBankHandler {
	return &BloodBankHandler{DB: db}
}

// ListBloodBanks returns all active blood banks.
func (h *BloodBankHandler) ListBloodBanks(c *gin.Context) {
	var banks []models.BloodBank
	query := h.DB.Where("is_active = ?", true)
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if err := query.Order("name asc").Find(&banks).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch blood banks: "+err.Error())
		return
	}
	utils.Success(c, "Blood banks fetched successfully", banks)
}

// GetBloodBankByID returns a single blood bank.
func (h *BloodBankHandler) GetBloodBankByID(c *gin.Context) {
	var bank models.BloodBank
	if err := h.DB.First(&bank, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood bank not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Blood bank fetched successfully", bank)
}

// CreateBloodBankRequest represents the request body for onboarding a bank.
type CreateBloodBankRequest struct {
	Name           string             `json:"name" binding:"required"`
	Address        string             `json:"address" binding:"required"`
	City           string             `json:"city"`
	PhoneNumber    string             `json:"phoneNumber"`
	OperatingHours models.WeeklyHours `json:"operatingHours"`
	Capacity       int                `json:"capacity" binding:"required,min=1"`
	Latitude       *float64           `json:"latitude"`
	Longitude      *float64           `json:"longitude"`
}

// CreateBloodBank onboards a new blood bank (admin).
func (h *BloodBankHandler) CreateBloodBank(c *gin.Context) {
	var req CreateBloodBankRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	bank := models.BloodBank{
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		PhoneNumber:    req.PhoneNumber,
		OperatingHours: req.OperatingHours,
		Capacity:       req.Capacity,
		IsActive:       true,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}

	if err := h.DB.Create(&bank).Error; err != nil {
		utils.InternalServerError(c, "Failed to create blood bank: "+err.Error())
		return
	}

	utils.Created(c, "Blood bank created successfully", bank)
}

// UpdateBloodBankRequest represents the request body for updating a bank.
type UpdateBloodBankRequest struct {
	Name           string              `json:"name"`
	Address        string              `json:"address"`
	City           string              `json:"city"`
	PhoneNumber    string              `json:"phoneNumber"`
	OperatingHours *models.WeeklyHours `json:"operatingHours"`
	Capacity       *int                `json:"capacity"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
}

// UpdateBloodBank updates a blood bank's profile (admin).
func (h *BloodBankHandler) UpdateBloodBank(c *gin.Context) {
	var bank models.BloodBank
	if err := h.DB.First(&bank, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood bank not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdateBloodBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		bank.Name = req.Name
	}
	if req.Address != "" {
		bank.Address = req.Address
	}
	if req.City != "" {
		bank.City = req.City
	}
	if req.PhoneNumber != "" {
		bank.PhoneNumber = req.PhoneNumber
	}
	if req.OperatingHours != nil {
		bank.OperatingHours = *req.OperatingHours
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			utils.BadRequest(c, "Capacity must be at least 1")
			return
		}
		bank.Capacity = *req.Capacity
	}
	if req.Latitude != nil {
		bank.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		bank.Longitude = req.Longitude
	}

	if err := h.DB.Save(&bank).Error; err != nil {
		utils.InternalServerError(c, "Failed to update blood bank: "+err.Error())
		return
	}

	utils.Success(c, "Blood bank updated successfully", bank)
}

// DeactivateBloodBank soft-deactivates a blood bank (admin). Banks are
// never hard-deleted.
func (h *BloodBankHandler) DeactivateBloodBank(c *gin.Context) {
	var bank models.BloodBank
	if err := h.DB.First(&bank, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood bank not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	bank.IsActive = false
	if err := h.DB.Save(&bank).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate blood bank: "+err.Error())
		return
	}

	utils.Success(c, "Blood bank deactivated successfully", bank)
}
