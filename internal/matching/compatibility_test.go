package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink-server/internal/models"
)

func TestCompatibleDonorTypes(t *testing.T) {
	t.Run("O- receives only O-", func(t *testing.T) {
		donors, err := CompatibleDonorTypes(models.BloodTypeONegative)
		require.NoError(t, err)
		assert.Equal(t, []models.BloodType{models.BloodTypeONegative}, donors)
	})

	t.Run("AB+ receives all eight types", func(t *testing.T) {
		donors, err := CompatibleDonorTypes(models.BloodTypeABPositive)
		require.NoError(t, err)
		assert.ElementsMatch(t, models.AllBloodTypes, donors)
	})

	t.Run("every type can receive its own", func(t *testing.T) {
		for _, bt := range models.AllBloodTypes {
			donors, err := CompatibleDonorTypes(bt)
			require.NoError(t, err)
			assert.Contains(t, donors, bt)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := CompatibleDonorTypes("X+")
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestCanReceiveFrom(t *testing.T) {
	// Donation compatibility is not symmetric: O- gives to A+ but not the
	// other way around.
	ok, err := CanReceiveFrom(models.BloodTypeAPositive, models.BloodTypeONegative)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CanReceiveFrom(models.BloodTypeONegative, models.BloodTypeAPositive)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CanReceiveFrom(models.BloodTypeBNegative, models.BloodTypeOPositive)
	require.NoError(t, err)
	assert.False(t, ok, "Rh-negative recipients cannot receive Rh-positive blood")
}
