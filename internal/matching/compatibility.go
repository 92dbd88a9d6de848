package matching

import (
	"bloodlink-server/internal/models"
)

// compatibleDonors maps a recipient blood type to the donor types whose
// blood it can safely receive. The table is authoritative; note its
// asymmetry: O- donates to everyone but receives only O-.
var compatibleDonors = map[models.BloodType][]models.BloodType{
	models.BloodTypeAPositive: {models.BloodTypeAPositive, models.BloodTypeANegative, models.BloodTypeOPositive, models.BloodTypeONegative},
	models.BloodTypeANegative: {models.BloodTypeANegative, models.BloodTypeONegative},
	models.BloodTypeBPositive: {models.BloodTypeBPositive, models.BloodTypeBNegative, models.BloodTypeOPositive, models.BloodTypeONegative},
	models.BloodTypeBNegative: {models.BloodTypeBNegative, models.BloodTypeONegative},
	models.BloodTypeABPositive: {
		models.BloodTypeAPositive, models.BloodTypeANegative,
		models.BloodTypeBPositive, models.BloodTypeBNegative,
		models.BloodTypeABPositive, models.BloodTypeABNegative,
		models.BloodTypeOPositive, models.BloodTypeONegative,
	},
	models.BloodTypeABNegative: {models.BloodTypeANegative, models.BloodTypeBNegative, models.BloodTypeABNegative, models.BloodTypeONegative},
	models.BloodTypeOPositive:  {models.BloodTypeOPositive, models.BloodTypeONegative},
	models.BloodTypeONegative:  {models.BloodTypeONegative},
}

// CompatibleDonorTypes returns the donor blood types a recipient of the
// given type can receive.
func CompatibleDonorTypes(recipient models.BloodType) ([]models.BloodType, error) {
	donors, ok := compatibleDonors[recipient]
	if !ok {
		return nil, &InvalidInputError{Field: "bloodType", Detail: "unsupported blood type " + string(recipient)}
	}
	out := make([]models.BloodType, len(donors))
	copy(out, donors)
	return out, nil
}

// CanReceiveFrom reports whether a recipient of the given type can receive
// blood from the given donor type.
func CanReceiveFrom(recipient, donor models.BloodType) (bool, error) {
	donors, err := CompatibleDonorTypes(recipient)
	if err != nil {
		return false, err
	}
	for _, d := range donors {
		if d == donor {
			return true, nil
		}
	}
	return false, nil
}
