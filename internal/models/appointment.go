package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment represents a scheduled donation appointment at a blood bank.
// Appointments are never deleted; status transitions are the only mutation
// path (scheduled -> completed, scheduled -> cancelled).
type Appointment struct {
	BaseModel
	DonorID     string            `gorm:"size:36;index" json:"donorId"`
	BloodBankID string            `gorm:"size:36;index" json:"bloodBankId"`
	ScheduledAt time.Time         `gorm:"index" json:"scheduledAt"`
	Status      AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Notes       string            `gorm:"type:text" json:"notes"`

	// Relations
	Donor     DonorProfile `gorm:"foreignKey:DonorID" json:"-"`
	BloodBank BloodBank    `gorm:"foreignKey:BloodBankID" json:"-"`
}
