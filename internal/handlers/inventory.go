package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/matching"
	"bloodlink-server/internal/models"
	"bloodlink-server/internal/utils"
)

// InventoryHandler handles blood inventory requests.
type InventoryHandler struct {
	DB      *gorm.DB
	Matcher *matching.Service
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(db *gorm.DB, matcher *matching.Service) *InventoryHandler {
	return &InventoryHandler{DB: db, Matcher: matcher}
}

// GetInventoryForBank returns the inventory rows for one blood bank.
func (h *InventoryHandler) GetInventoryForBank(c *gin.Context) {
	bankID := c.Param("id")

	var bank models.BloodBank
	if err := h.DB.First(&bank, "id = ?", bankID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood bank not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var inventory []models.BloodInventory
	if err := h.DB.Where("blood_bank_id = ?", bankID).Order("blood_type asc").Find(&inventory).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch inventory: "+err.Error())
		return
	}

	utils.Success(c, "Inventory fetched successfully", inventory)
}

// UpsertInventoryRequest represents the request body for setting stock
// levels of one blood type at one bank.
type UpsertInventoryRequest struct {
	BloodType        string     `json:"bloodType" binding:"required"`
	UnitsAvailable   *int       `json:"unitsAvailable"`
	MinimumThreshold *int       `json:"minimumThreshold"`
	ExpirationDate   *time.Time `json:"expirationDate"`
}

// UpsertInventory creates or updates the inventory row for a bank and
// blood type (admin).
func (h *InventoryHandler) UpsertInventory(c *gin.Context) {
	bankID := c.Param("id")

	var req UpsertInventoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	bloodType := models.BloodType(req.BloodType)
	if !bloodType.IsValid() {
		utils.BadRequest(c, "Unsupported blood type: "+req.BloodType)
		return
	}
	if req.UnitsAvailable != nil && *req.UnitsAvailable < 0 {
		utils.BadRequest(c, "unitsAvailable cannot be negative")
		return
	}
	if req.MinimumThreshold != nil && *req.MinimumThreshold < 0 {
		utils.BadRequest(c, "minimumThreshold cannot be negative")
		return
	}

	var bank models.BloodBank
	if err := h.DB.First(&bank, "id = ?", bankID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood bank not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var inventory models.BloodInventory
	err := h.DB.Where("blood_bank_id = ? AND blood_type = ?", bankID, bloodType).First(&inventory).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if err == gorm.ErrRecordNotFound {
		inventory = models.BloodInventory{BloodBankID: bankID, BloodType: bloodType}
	}

	if req.UnitsAvailable != nil {
		inventory.UnitsAvailable = *req.UnitsAvailable
	}
	if req.MinimumThreshold != nil {
		inventory.MinimumThreshold = *req.MinimumThreshold
	}
	if req.ExpirationDate != nil {
		inventory.ExpirationDate = req.ExpirationDate
	}

	if err := h.DB.Save(&inventory).Error; err != nil {
		utils.InternalServerError(c, "Failed to save inventory: "+err.Error())
		return
	}

	utils.Success(c, "Inventory saved successfully", inventory)
}

// AdjustInventoryRequest represents the request body for reserving or
// releasing units of one blood type at one bank.
type AdjustInventoryRequest struct {
	BloodType string `json:"bloodType" binding:"required"`
	Units     int    `json:"units" binding:"required,min=1"`
}

// ReserveInventory moves units from available to reserved at a bank (admin).
// The reservation is all-or-nothing.
func (h *InventoryHandler) ReserveInventory(c *gin.Context) {
	var req AdjustInventoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	reserved, err := h.Matcher.Reserve(c.Request.Context(), c.Param("id"), models.BloodType(req.BloodType), req.Units)
	if err != nil {
		respondMatchingError(c, err)
		return
	}
	if !reserved {
		utils.UnprocessableEntity(c, "Insufficient available units to reserve")
		return
	}

	utils.Success(c, "Units reserved successfully", gin.H{"reserved": req.Units})
}

// ReleaseInventory moves previously reserved units back to available
// (admin). Releasing more than is reserved releases what is there.
func (h *InventoryHandler) ReleaseInventory(c *gin.Context) {
	var req AdjustInventoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.Matcher.Release(c.Request.Context(), c.Param("id"), models.BloodType(req.BloodType), req.Units); err != nil {
		respondMatchingError(c, err)
		return
	}

	utils.Success(c, "Units released successfully", nil)
}

// GetLowStock lists inventory rows below their minimum threshold across
// all active banks (admin).
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	var inventory []models.BloodInventory
	err := h.DB.
		Joins("BloodBank").
		Where("units_available < minimum_threshold").
		Where("`BloodBank`.`is_active` = ?", true).
		Find(&inventory).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch low-stock inventory: "+err.Error())
		return
	}

	utils.Success(c, "Low-stock inventory fetched successfully", inventory)
}
