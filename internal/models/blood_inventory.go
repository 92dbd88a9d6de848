package models

import (
	"time"
)

// BloodInventory tracks the stock of one blood type at one blood bank.
// Invariant: UnitsAvailable >= 0 and UnitsReserved >= 0. Reservation moves
// units from available to reserved; release moves them back.
type BloodInventory struct {
	BaseModel
	BloodBankID      string     `gorm:"size:36;uniqueIndex:idx_bank_blood_type;not null" json:"bloodBankId"`
	BloodType        BloodType  `gorm:"size:3;uniqueIndex:idx_bank_blood_type;not null" json:"bloodType"`
	UnitsAvailable   int        `gorm:"default:0" json:"unitsAvailable"`
	UnitsReserved    int        `gorm:"default:0" json:"unitsReserved"`
	MinimumThreshold int        `gorm:"default:0" json:"minimumThreshold"`
	ExpirationDate   *time.Time `json:"expirationDate,omitempty"`

	BloodBank BloodBank `gorm:"foreignKey:BloodBankID" json:"-"`
}

// IsLowStock reports whether available units have fallen below the
// configured minimum threshold.
func (i *BloodInventory) IsLowStock() bool {
	return i.UnitsAvailable < i.MinimumThreshold
}
