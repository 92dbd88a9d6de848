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

// AppointmentHandler handles appointment booking and lifecycle requests.
type AppointmentHandler struct {
	DB        *gorm.DB
	Scheduler *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, scheduler *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler}
}

// principal builds the scheduling principal for the authenticated user.
func principal(c *gin.Context) (scheduling.Principal, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		return scheduling.Principal{}, false
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	return scheduling.Principal{UserID: userID, Role: role}, true
}

// GetAvailability lists the open and closed slots for a blood bank over a
// date range (defaults to the next seven days).
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	bankID := c.Param("id")

	from := time.Now()
	to := from.AddDate(0, 0, 7)
	var err error
	if fromStr := c.Query("from"); fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			utils.BadRequest(c, "Invalid 'from' date, expected YYYY-MM-DD")
			return
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			utils.BadRequest(c, "Invalid 'to' date, expected YYYY-MM-DD")
			return
		}
	}

	slots, err := h.Scheduler.Availability(c.Request.Context(), bankID, from, to)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Availability computed successfully", slots)
}

// BookAppointmentRequest represents the request body for booking.
type BookAppointmentRequest struct {
	BloodBankID string    `json:"bloodBankId" binding:"required,uuid"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Notes       string    `json:"notes"`
	// DonorID lets an admin book on a donor's behalf; donors book for
	// themselves and must leave it empty.
	DonorID string `json:"donorId"`
}

// BookAppointment books a donation appointment.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	p, ok := principal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	donorID := req.DonorID
	if p.Role != models.RoleAdmin {
		if donorID != "" {
			utils.Forbidden(c, "Donors can only book appointments for themselves.")
			return
		}
		var profile models.DonorProfile
		if err := h.DB.Where("user_id = ?", p.UserID).First(&profile).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "Donor profile not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		donorID = profile.ID
	} else if donorID == "" {
		utils.BadRequest(c, "donorId is required when booking as an admin")
		return
	}

	appointment, err := h.Scheduler.Book(c.Request.Context(), donorID, req.BloodBankID, req.ScheduledAt, req.Notes)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser fetches appointments for the logged-in user. Donors
// see their own; admins see all.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointments []models.Appointment
	query := h.DB.Preload("BloodBank").Order("scheduled_at asc")

	switch p.Role {
	case models.RoleDonor:
		var profile models.DonorProfile
		if err := h.DB.Where("user_id = ?", p.UserID).First(&profile).Error; err != nil {
			utils.NotFound(c, "Donor profile not found")
			return
		}
		query = query.Where("donor_id = ?", profile.ID)
	case models.RoleAdmin:
		// Admins see all appointments; optionally filtered by bank.
		if bankID := c.Query("bloodBankId"); bankID != "" {
			query = query.Where("blood_bank_id = ?", bankID)
		}
	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
		return
	}

	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches a single appointment, visible to the owning
// donor or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Donor").Preload("BloodBank").First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if p.Role != models.RoleAdmin && appointment.Donor.UserID != p.UserID {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	NewScheduledAt time.Time `json:"newScheduledAt" binding:"required"`
	Notes          string    `json:"notes"`
}

// RescheduleAppointment moves an appointment to a new available slot.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	p, ok := principal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Scheduler.Reschedule(c.Request.Context(), p, c.Param("id"), req.NewScheduledAt, req.Notes)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// CancelAppointment cancels a scheduled appointment within the allowed
// cancellation window.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Scheduler.Cancel(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// CompleteAppointment marks an appointment completed at donor check-in
// (admin). The donation itself is recorded separately.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Scheduler.Complete(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment completed successfully", appointment)
}
