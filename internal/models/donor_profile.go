package models

import (
	"time"
)

// DonorProfile holds the donation-related state of a donor, separate from
// the account record. It is created at registration and mutated by profile
// updates, deferral management, and post-donation recording.
type DonorProfile struct {
	BaseModel
	UserID           string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	BloodType        BloodType  `gorm:"size:3;not null" json:"bloodType"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
	TotalDonations   int        `gorm:"default:0" json:"totalDonations"`

	// Temporary deferral: donor may not donate until DeferralEndDate.
	IsDeferredTemporary bool       `gorm:"default:false" json:"isDeferredTemporary"`
	DeferralEndDate     *time.Time `json:"deferralEndDate,omitempty"`
	DeferralReason      string     `gorm:"size:255" json:"deferralReason,omitempty"`

	// Permanent deferral: donor may never donate. When set, the temporary
	// deferral fields are ignored.
	IsDeferredPermanent     bool   `gorm:"default:false" json:"isDeferredPermanent"`
	PermanentDeferralReason string `gorm:"size:255" json:"permanentDeferralReason,omitempty"`

	// Relations
	User            User             `gorm:"foreignKey:UserID" json:"-"`
	Appointments    []Appointment    `gorm:"foreignKey:DonorID" json:"-"`
	DonationRecords []DonationRecord `gorm:"foreignKey:DonorID" json:"-"`
}
