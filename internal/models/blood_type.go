package models

// BloodType is one of the eight ABO/Rh blood groups.
type BloodType string

const (
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeABNegative BloodType = "AB-"
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeONegative  BloodType = "O-"
)

// AllBloodTypes lists every supported blood type.
var AllBloodTypes = []BloodType{
	BloodTypeAPositive, BloodTypeANegative,
	BloodTypeBPositive, BloodTypeBNegative,
	BloodTypeABPositive, BloodTypeABNegative,
	BloodTypeOPositive, BloodTypeONegative,
}

// IsValid reports whether t is one of the eight supported blood types.
func (t BloodType) IsValid() bool {
	for _, bt := range AllBloodTypes {
		if t == bt {
			return true
		}
	}
	return false
}
