package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/matching"
	"bloodlink-server/internal/scheduling"
	"bloodlink-server/internal/utils"
)

// respondSchedulingError maps scheduling errors to HTTP responses.
func respondSchedulingError(c *gin.Context, err error) {
	var (
		invalidInput *scheduling.InvalidInputError
		ineligible   *scheduling.IneligibleDonorError
		slotFull     *scheduling.SlotUnavailableError
		forbidden    *scheduling.ForbiddenError
		window       *scheduling.CancellationWindowError
		transition   *scheduling.InvalidStateTransitionError
	)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, "Resource not found")
	case errors.As(err, &invalidInput):
		utils.BadRequest(c, err.Error())
	case errors.As(err, &ineligible):
		utils.UnprocessableEntity(c, err.Error())
	case errors.As(err, &slotFull):
		utils.Conflict(c, err.Error())
	case errors.As(err, &forbidden):
		utils.Forbidden(c, err.Error())
	case errors.As(err, &window):
		utils.UnprocessableEntity(c, err.Error())
	case errors.As(err, &transition):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

// respondMatchingError maps matching/inventory errors to HTTP responses.
func respondMatchingError(c *gin.Context, err error) {
	var (
		invalidInput *matching.InvalidInputError
		insufficient *matching.InsufficientInventoryError
		invalidState *matching.InvalidStateError
	)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, "Resource not found")
	case errors.As(err, &invalidInput):
		utils.BadRequest(c, err.Error())
	case errors.As(err, &insufficient):
		utils.UnprocessableEntity(c, err.Error())
	case errors.As(err, &invalidState):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
