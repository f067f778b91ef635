package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crewbook/services/booking"
	"crewbook/utils"
)

// respondError maps booking errors onto HTTP statuses. Anything unrecognised is a 500
// and is logged with the request's logger.
func respondError(c *gin.Context, err error) {
	if inputErr := booking.IsInputError(err); inputErr != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", inputErr.Fields())
		return
	}
	if transitionErr := booking.IsInvalidTransition(err); transitionErr != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, transitionErr.Error(), gin.H{
			"currentStatus":   transitionErr.Current,
			"requestedStatus": transitionErr.Requested,
			"role":            transitionErr.Role,
		})
		return
	}
	if conflictErr := booking.IsConflictDetected(err); conflictErr != nil {
		utils.JSONError(c, http.StatusConflict, "professional is already booked for that time", gin.H{
			"startDate": conflictErr.StartDate,
			"endDate":   conflictErr.EndDate,
		})
		return
	}

	switch {
	case errors.Is(err, booking.ErrUnauthorized):
		utils.JSONError(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, booking.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, booking.ErrConflictingUpdate),
		errors.Is(err, booking.ErrDuplicateEventBooking):
		utils.JSONError(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, booking.ErrTermsLocked):
		utils.JSONError(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		getLogger(c).Error("Request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", nil)
	}
}

// getLogger retrieves the request logger set by middleware.RequestLogger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}
