package handlers

import (
	"github.com/gin-gonic/gin"

	"crewbook/utils"
)

// HandlerBundle groups the endpoint handlers and the auth they sit behind.
type HandlerBundle struct {
	Tokens *utils.TokenValidator

	// Booking endpoints
	CreateBooking gin.HandlerFunc
	GetBooking    gin.HandlerFunc
	UpdateStatus  gin.HandlerFunc
	UpdateTerms   gin.HandlerFunc
	ListBookings  gin.HandlerFunc

	Health gin.HandlerFunc
}

func NewHandlerBundle(tokens *utils.TokenValidator, bookings *BookingHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		Tokens:        tokens,
		CreateBooking: bookings.CreateBooking,
		GetBooking:    bookings.GetBooking,
		UpdateStatus:  bookings.UpdateStatus,
		UpdateTerms:   bookings.UpdateTerms,
		ListBookings:  bookings.ListBookings,
		Health:        health,
	}
}
