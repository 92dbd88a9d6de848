package models

import (
	"time"
)

// UrgencyLevel classifies how fast a blood request must be fulfilled.
type UrgencyLevel string

const (
	UrgencyRoutine   UrgencyLevel = "routine"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyEmergency UrgencyLevel = "emergency"
)

// IsValid reports whether u is a known urgency level.
func (u UrgencyLevel) IsValid() bool {
	return u == UrgencyRoutine || u == UrgencyUrgent || u == UrgencyEmergency
}

// RequestStatus is the lifecycle state of a blood request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
)

// BloodRequest is a facility's request for blood units. Fulfilled and
// cancelled are terminal states.
type BloodRequest struct {
	BaseModel
	FacilityID     string        `gorm:"size:36;index" json:"facilityId"`
	BloodType      BloodType     `gorm:"size:3;not null" json:"bloodType"`
	UnitsRequested int           `gorm:"not null" json:"unitsRequested"`
	Urgency        UrgencyLevel  `gorm:"size:20;default:'routine'" json:"urgency"`
	RequiredBy     time.Time     `json:"requiredBy"`
	Status         RequestStatus `gorm:"size:20;default:'pending'" json:"status"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`

	// Set when the request is fulfilled.
	FulfilledByID *string    `gorm:"size:36" json:"fulfilledById,omitempty"`
	FulfilledAt   *time.Time `json:"fulfilledAt,omitempty"`

	// Relations
	Facility    User       `gorm:"foreignKey:FacilityID" json:"-"`
	FulfilledBy *BloodBank `gorm:"foreignKey:FulfilledByID" json:"-"`
}
