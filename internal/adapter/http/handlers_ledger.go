package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/middleware"
)

// ListPayments returns the full ledger for a tenancy.
// GET /api/v1/tenancies/{id}/payments
func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.ledger.ListByTenant(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	if payments == nil {
		payments = []ledger.RentPayment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

type ensureObligationRequest struct {
	PaymentMonth string `json:"payment_month"`
}

// EnsureObligation generates one period's obligation on demand.
// POST /api/v1/tenancies/{id}/obligations
func (h *Handlers) EnsureObligation(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[ensureObligationRequest](w, r)
	if !ok {
		return
	}
	period, err := money.ParsePeriod(req.PaymentMonth)
	if err != nil {
		writeDomainError(w, err, "invalid payment_month")
		return
	}

	rp, created, err := h.ledger.EnsureObligation(r.Context(), urlParam(r, "id"), period)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, rp)
}

type recordPaymentRequest struct {
	PaymentMonth  string          `json:"payment_month"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// RecordPayment records one confirmed payment against a billing month.
// POST /api/v1/tenancies/{id}/payments
func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[recordPaymentRequest](w, r)
	if !ok {
		return
	}
	period, err := money.ParsePeriod(req.PaymentMonth)
	if err != nil {
		writeDomainError(w, err, "invalid payment_month")
		return
	}

	rp, err := h.ledger.ResolveObligation(r.Context(), urlParam(r, "id"), period)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}

	in := ledger.PaymentInput{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	}
	if req.PaymentDate != nil {
		in.PaymentDate = *req.PaymentDate
	}

	updated, err := h.ledger.RecordPayment(r.Context(), rp.ID, in)
	if err != nil {
		writeDomainError(w, err, "obligation not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GetPayment returns one obligation. GET /api/v1/payments/{id}
func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	rp, err := h.ledger.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "obligation not found")
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

type lateFeeRequest struct {
	Fee decimal.Decimal `json:"fee"`
}

// AssessLateFee adds a fee to a past-due obligation.
// POST /api/v1/payments/{id}/late-fee
func (h *Handlers) AssessLateFee(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[lateFeeRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	rp, err := h.ledger.AssessLateFee(r.Context(), urlParam(r, "id"), actor, req.Fee)
	if err != nil {
		writeDomainError(w, err, "obligation not found")
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

type waiveRequest struct {
	Reason string `json:"reason"`
}

// WaivePayment forgives an obligation. POST /api/v1/payments/{id}/waive
func (h *Handlers) WaivePayment(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[waiveRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	rp, err := h.ledger.Waive(r.Context(), urlParam(r, "id"), actor, req.Reason)
	if err != nil {
		writeDomainError(w, err, "obligation not found")
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

// RunRollover generates missing obligations for all active tenancies.
// POST /api/v1/admin/rollover
func (h *Handlers) RunRollover(w http.ResponseWriter, r *http.Request) {
	created, err := h.ledger.Rollover(r.Context())
	if err != nil {
		writeDomainError(w, err, "rollover failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// RunSweep flips past-due open obligations to late.
// POST /api/v1/admin/sweep
func (h *Handlers) RunSweep(w http.ResponseWriter, r *http.Request) {
	flipped, err := h.ledger.SweepOverdue(r.Context())
	if err != nil {
		writeDomainError(w, err, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"flipped": flipped})
}
