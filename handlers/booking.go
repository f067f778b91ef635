package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crewbook/middleware"
	"crewbook/models"
	"crewbook/services/booking"
	"crewbook/utils"
)

// BookingHandler exposes the booking service over HTTP.
type BookingHandler struct {
	svc *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	updated, err := h.svc.UpdateStatusWithRetry(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) UpdateTerms(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var terms models.Terms
	if err := c.ShouldBindJSON(&terms); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	updated, err := h.svc.UpdateTerms(c.Request.Context(), actor, c.Param("id"), terms)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListBookings serves GET /api/bookings?professionalId=|plannerId=[&status=].
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var status *models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := models.BookingStatus(raw)
		if !s.IsValid() {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", gin.H{"status": []string{"unknown status"}})
			return
		}
		status = &s
	}

	var (
		list []models.Booking
		err  error
	)
	professionalID, plannerID := c.Query("professionalId"), c.Query("plannerId")
	switch {
	case professionalID != "" && plannerID == "":
		list, err = h.svc.ListForProfessional(c.Request.Context(), actor, professionalID, status)
	case plannerID != "" && professionalID == "":
		list, err = h.svc.ListForPlanner(c.Request.Context(), actor, plannerID, status)
	default:
		utils.JSONError(c, http.StatusBadRequest, "exactly one of professionalId or plannerId is required", nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthenticated", nil)
	}
	return actor, ok
}
