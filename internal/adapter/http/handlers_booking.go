package http

import (
	"net/http"

	"github.com/Strob0t/LeaseForge/internal/domain/booking"
	"github.com/Strob0t/LeaseForge/internal/middleware"
)

// CreateBooking reserves a unit. POST /api/v1/bookings
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[booking.CreateRequest](w, r)
	if !ok {
		return
	}

	b, err := h.booking.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBooking returns one booking. GET /api/v1/bookings/{id}
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.booking.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListBookings returns a unit's bookings. GET /api/v1/properties/{id}/bookings
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.booking.ListByProperty(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	if bookings == nil {
		bookings = []booking.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ConfirmBooking accepts a pending booking. POST /api/v1/bookings/{id}/confirm
func (h *Handlers) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.booking.Confirm(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking withdraws a booking. POST /api/v1/bookings/{id}/cancel
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[cancelBookingRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	b, err := h.booking.Cancel(r.Context(), urlParam(r, "id"), actor, req.Reason)
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CompleteBooking closes out a stay. POST /api/v1/bookings/{id}/complete
func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.booking.Complete(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}
