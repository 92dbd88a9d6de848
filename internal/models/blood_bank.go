package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DayHours is the opening window for a single weekday. Times are "HH:MM"
// in the bank's local time. A zero value means the bank is closed that day.
type DayHours struct {
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

// IsClosed reports whether no opening window is set for the day.
func (d DayHours) IsClosed() bool {
	return d.Open == "" || d.Close == ""
}

// OpenHour returns the whole-hour start of the opening window.
func (d DayHours) OpenHour() (int, error) {
	return parseHour(d.Open)
}

// CloseHour returns the whole-hour end of the opening window.
func (d DayHours) CloseHour() (int, error) {
	return parseHour(d.Close)
}

func parseHour(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour(), nil
}

// WeeklyHours maps each weekday (indexed by time.Weekday, Sunday = 0) to its
// opening window. Stored as a JSON column.
type WeeklyHours [7]DayHours

// ForWeekday returns the opening window for the given weekday.
func (w WeeklyHours) ForWeekday(day time.Weekday) DayHours {
	return w[int(day)]
}

// Value implements driver.Valuer so GORM can persist the hours as JSON.
func (w WeeklyHours) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan implements sql.Scanner.
func (w *WeeklyHours) Scan(value interface{}) error {
	if value == nil {
		*w = WeeklyHours{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for WeeklyHours", value)
	}
	return json.Unmarshal(raw, w)
}

// BloodBank represents a donation center holding blood inventory and
// accepting appointments. Banks are soft-deactivated, never hard-deleted.
type BloodBank struct {
	BaseModel
	Name           string      `gorm:"size:255;not null" json:"name"`
	Address        string      `gorm:"size:255" json:"address"`
	City           string      `gorm:"size:100" json:"city"`
	PhoneNumber    string      `gorm:"size:30" json:"phoneNumber,omitempty"`
	OperatingHours WeeklyHours `gorm:"type:json" json:"operatingHours"`
	// Capacity is the number of donation chairs; it derives the maximum
	// concurrent appointments per hour slot.
	Capacity  int      `gorm:"default:10" json:"capacity"`
	IsActive  bool     `gorm:"default:true" json:"isActive"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Relations
	Appointments []Appointment    `gorm:"foreignKey:BloodBankID" json:"-"`
	Inventory    []BloodInventory `gorm:"foreignKey:BloodBankID" json:"-"`
}
