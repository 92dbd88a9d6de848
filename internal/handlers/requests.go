package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/matching"
	"bloodlink-server/internal/middleware"
	"bloodlink-server/internal/models"
	"bloodlink-server/internal/utils"
)

// BloodRequestHandler handles facility blood requests and fulfillment.
type BloodRequestHandler struct {
	DB      *gorm.DB
	Matcher *matching.Service
}

// NewBloodRequestHandler creates a new BloodRequestHandler.
func NewBloodRequestHandler(db *gorm.DB, matcher *matching.Service) *BloodRequestHandler {
	return &BloodRequestHandler{DB: db, Matcher: matcher}
}

// CreateRequestRequest represents the request body for a new blood request.
type CreateRequestRequest struct {
	BloodType      string    `json:"bloodType" binding:"required"`
	UnitsRequested int       `json:"unitsRequested" binding:"required,min=1"`
	Urgency        string    `json:"urgency" binding:"required,oneof=routine urgent emergency"`
	RequiredBy     time.Time `json:"requiredBy" binding:"required"`
	Notes          string    `json:"notes"`
}

// CreateRequest creates a blood request for the authenticated facility.
// Requests required within the escalation window are recorded as emergency
// regardless of the submitted urgency.
func (h *BloodRequestHandler) CreateRequest(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	bloodType := models.BloodType(req.BloodType)
	if !bloodType.IsValid() {
		utils.BadRequest(c, "Unsupported blood type: "+req.BloodType)
		return
	}
	if !req.RequiredBy.After(time.Now()) {
		utils.BadRequest(c, "requiredBy must be in the future")
		return
	}

	request := models.BloodRequest{
		FacilityID:     userID,
		BloodType:      bloodType,
		UnitsRequested: req.UnitsRequested,
		Urgency:        h.Matcher.EffectiveUrgency(models.UrgencyLevel(req.Urgency), req.RequiredBy),
		RequiredBy:     req.RequiredBy,
		Status:         models.RequestPending,
		Notes:          req.Notes,
	}

	if err := h.DB.Create(&request).Error; err != nil {
		utils.InternalServerError(c, "Failed to create blood request: "+err.Error())
		return
	}

	utils.Created(c, "Blood request created successfully", request)
}

// GetRequestsForUser lists blood requests. Facilities see their own; admins
// see all, optionally filtered by status.
func (h *BloodRequestHandler) GetRequestsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Order("required_by asc")
	if role != models.RoleAdmin {
		query = query.Where("facility_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.BloodRequest
	if err := query.Find(&requests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch blood requests: "+err.Error())
		return
	}

	utils.Success(c, "Blood requests fetched successfully", requests)
}

// GetMatchesForRequest runs the inventory search for a pending request and
// returns the ranked candidate banks.
func (h *BloodRequestHandler) GetMatchesForRequest(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	var request models.BloodRequest
	if err := h.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood request not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if role != models.RoleAdmin && request.FacilityID != userID {
		utils.Forbidden(c, "You are not authorized to view matches for this request")
		return
	}

	var origin *matching.Coordinates
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.BadRequest(c, "Invalid lat/lng coordinates")
			return
		}
		origin = &matching.Coordinates{Latitude: lat, Longitude: lng}
	}

	matches, err := h.Matcher.FindMatches(c.Request.Context(), request.BloodType, request.UnitsRequested, origin)
	if err != nil {
		respondMatchingError(c, err)
		return
	}

	utils.Success(c, "Matches found successfully", matches)
}

// FulfillRequestRequest represents the request body for fulfillment.
type FulfillRequestRequest struct {
	BloodBankID   string `json:"bloodBankId" binding:"required,uuid"`
	UnitsProvided int    `json:"unitsProvided" binding:"required,min=1"`
	Notes         string `json:"notes"`
}

// FulfillRequest fulfills a pending request from a bank's inventory in a
// single atomic transaction (admin).
func (h *BloodRequestHandler) FulfillRequest(c *gin.Context) {
	var req FulfillRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	request, err := h.Matcher.Fulfill(c.Request.Context(), c.Param("id"), req.BloodBankID, req.UnitsProvided, req.Notes)
	if err != nil {
		respondMatchingError(c, err)
		return
	}

	utils.Success(c, "Blood request fulfilled successfully", request)
}

// CancelRequest cancels a pending blood request. Only the owning facility
// or an admin may cancel, and only while the request is still pending.
func (h *BloodRequestHandler) CancelRequest(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	var request models.BloodRequest
	if err := h.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Blood request not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if role != models.RoleAdmin && request.FacilityID != userID {
		utils.Forbidden(c, "You are not authorized to cancel this request")
		return
	}
	if request.Status != models.RequestPending {
		utils.Conflict(c, "Only pending requests can be cancelled")
		return
	}

	request.Status = models.RequestCancelled
	if err := h.DB.Save(&request).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel blood request: "+err.Error())
		return
	}

	utils.Success(c, "Blood request cancelled successfully", request)
}
