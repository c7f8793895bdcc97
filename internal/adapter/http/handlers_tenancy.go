package http

import (
	"net/http"
	"time"

	"github.com/Strob0t/LeaseForge/internal/domain/audit"
	"github.com/Strob0t/LeaseForge/internal/domain/tenancy"
	"github.com/Strob0t/LeaseForge/internal/middleware"
)

// CreateTenancy lets a unit. POST /api/v1/tenancies
func (h *Handlers) CreateTenancy(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenancy.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.tenancy.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTenancy returns one tenancy. GET /api/v1/tenancies/{id}
func (h *Handlers) GetTenancy(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenancy.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListTenancies returns a landlord's tenancies. GET /api/v1/tenancies?landlord_id=
func (h *Handlers) ListTenancies(w http.ResponseWriter, r *http.Request) {
	landlordID := r.URL.Query().Get("landlord_id")
	if !requireField(w, landlordID, "landlord_id") {
		return
	}

	tenancies, err := h.tenancy.ListByLandlord(r.Context(), landlordID)
	if err != nil {
		writeDomainError(w, err, "landlord not found")
		return
	}
	if tenancies == nil {
		tenancies = []tenancy.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenancies)
}

type endTenancyRequest struct {
	MoveOutDate    *time.Time `json:"move_out_date,omitempty"`
	ConditionNotes string     `json:"condition_notes,omitempty"`
}

// EndTenancy closes a tenancy normally. POST /api/v1/tenancies/{id}/end
func (h *Handlers) EndTenancy(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[endTenancyRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	t, err := h.tenancy.End(r.Context(), urlParam(r, "id"), actor, req.MoveOutDate, req.ConditionNotes)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type evictTenancyRequest struct {
	Reason string `json:"reason"`
}

// EvictTenancy closes a tenancy for cause. POST /api/v1/tenancies/{id}/evict
func (h *Handlers) EvictTenancy(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[evictTenancyRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	t, err := h.tenancy.Evict(r.Context(), urlParam(r, "id"), actor, req.Reason)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// RenewTenancy extends a lease. POST /api/v1/tenancies/{id}/renew
func (h *Handlers) RenewTenancy(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenancy.RenewRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	t, err := h.tenancy.Renew(r.Context(), urlParam(r, "id"), actor, req)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetTenancyAudit returns the administrative history. GET /api/v1/tenancies/{id}/audit
func (h *Handlers) GetTenancyAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tenancy.AuditTrail(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
