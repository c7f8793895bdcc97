package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Tenancies
		r.Get("/tenancies", h.ListTenancies)
		r.Post("/tenancies", h.CreateTenancy)
		r.Get("/tenancies/{id}", h.GetTenancy)
		r.Post("/tenancies/{id}/end", h.EndTenancy)
		r.Post("/tenancies/{id}/evict", h.EvictTenancy)
		r.Post("/tenancies/{id}/renew", h.RenewTenancy)
		r.Get("/tenancies/{id}/audit", h.GetTenancyAudit)

		// Rent ledger
		r.Get("/tenancies/{id}/payments", h.ListPayments)
		r.Post("/tenancies/{id}/payments", h.RecordPayment)
		r.Post("/tenancies/{id}/obligations", h.EnsureObligation)
		r.Get("/payments/{id}", h.GetPayment)
		r.Post("/payments/{id}/late-fee", h.AssessLateFee)
		r.Post("/payments/{id}/waive", h.WaivePayment)

		// Ledger housekeeping (also run on the cron schedule)
		r.Post("/admin/rollover", h.RunRollover)
		r.Post("/admin/sweep", h.RunSweep)

		// Maintenance
		r.Post("/maintenance", h.CreateMaintenance)
		r.Get("/maintenance/{id}", h.GetMaintenance)
		r.Get("/properties/{id}/maintenance", h.ListMaintenance)
		r.Post("/maintenance/{id}/assign", h.AssignMaintenance)
		r.Post("/maintenance/{id}/schedule", h.ScheduleMaintenance)
		r.Post("/maintenance/{id}/start", h.StartMaintenance)
		r.Post("/maintenance/{id}/pending-parts", h.HoldMaintenance)
		r.Post("/maintenance/{id}/complete", h.CompleteMaintenance)
		r.Post("/maintenance/{id}/cancel", h.CancelMaintenance)

		// Bookings
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{id}", h.GetBooking)
		r.Get("/properties/{id}/bookings", h.ListBookings)
		r.Post("/bookings/{id}/confirm", h.ConfirmBooking)
		r.Post("/bookings/{id}/cancel", h.CancelBooking)
		r.Post("/bookings/{id}/complete", h.CompleteBooking)

		// Stats
		r.Get("/landlords/{id}/stats", h.GetStats)
	})
}
