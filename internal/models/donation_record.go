package models

import (
	"time"
)

// DonationRecord is the permanent record of one completed donation. It is
// created once per donation and immutable afterwards except for notes.
type DonationRecord struct {
	BaseModel
	DonorID       string    `gorm:"size:36;index" json:"donorId"`
	BloodBankID   string    `gorm:"size:36;index" json:"bloodBankId"`
	AppointmentID *string   `gorm:"size:36" json:"appointmentId,omitempty"`
	DonationDate  time.Time `json:"donationDate"`
	BloodType     BloodType `gorm:"size:3;not null" json:"bloodType"`
	// UnitsCollected is in whole-blood units, 0.1 to 2.0 in steps of 0.1.
	UnitsCollected float64 `gorm:"type:decimal(3,1)" json:"unitsCollected"`
	Notes          string  `gorm:"type:text" json:"notes,omitempty"`

	// Optional health metrics captured at check-in.
	HemoglobinGDL *float64 `gorm:"type:decimal(4,1)" json:"hemoglobinGdl,omitempty"`
	BloodPressure string   `gorm:"size:20" json:"bloodPressure,omitempty"`
	PulseBPM      *int     `json:"pulseBpm,omitempty"`
	WeightKG      *float64 `gorm:"type:decimal(5,1)" json:"weightKg,omitempty"`

	// Relations
	Donor       DonorProfile `gorm:"foreignKey:DonorID" json:"-"`
	BloodBank   BloodBank    `gorm:"foreignKey:BloodBankID" json:"-"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
