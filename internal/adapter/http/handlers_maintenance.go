package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain/maintenance"
)

// CreateMaintenance opens a repair request. POST /api/v1/maintenance
func (h *Handlers) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[maintenance.CreateRequest](w, r)
	if !ok {
		return
	}

	m, err := h.maintenance.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMaintenance returns one request. GET /api/v1/maintenance/{id}
func (h *Handlers) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	m, err := h.maintenance.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListMaintenance returns a unit's requests. GET /api/v1/properties/{id}/maintenance
func (h *Handlers) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	requests, err := h.maintenance.ListByProperty(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "property not found")
		return
	}
	if requests == nil {
		requests = []maintenance.Request{}
	}
	writeJSON(w, http.StatusOK, requests)
}

type assignRequest struct {
	Vendor        string `json:"vendor"`
	VendorContact string `json:"vendor_contact,omitempty"`
}

// AssignMaintenance hands the request to a vendor.
// POST /api/v1/maintenance/{id}/assign
func (h *Handlers) AssignMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[assignRequest](w, r)
	if !ok {
		return
	}

	m, err := h.maintenance.Assign(r.Context(), urlParam(r, "id"), req.Vendor, req.VendorContact)
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type scheduleRequest struct {
	ScheduledDate time.Time        `json:"scheduled_date"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
}

// ScheduleMaintenance books the vendor visit.
// POST /api/v1/maintenance/{id}/schedule
func (h *Handlers) ScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[scheduleRequest](w, r)
	if !ok {
		return
	}

	m, err := h.maintenance.Schedule(r.Context(), urlParam(r, "id"), req.ScheduledDate, req.EstimatedCost)
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// StartMaintenance marks the work underway. POST /api/v1/maintenance/{id}/start
func (h *Handlers) StartMaintenance(w http.ResponseWriter, r *http.Request) {
	m, err := h.maintenance.Start(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HoldMaintenance pauses the work for parts.
// POST /api/v1/maintenance/{id}/pending-parts
func (h *Handlers) HoldMaintenance(w http.ResponseWriter, r *http.Request) {
	m, err := h.maintenance.HoldForParts(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type completeMaintenanceRequest struct {
	ActualCost      *decimal.Decimal `json:"actual_cost,omitempty"`
	ResolutionNotes string           `json:"resolution_notes,omitempty"`
}

// CompleteMaintenance closes the request. POST /api/v1/maintenance/{id}/complete
func (h *Handlers) CompleteMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[completeMaintenanceRequest](w, r)
	if !ok {
		return
	}

	m, err := h.maintenance.Complete(r.Context(), urlParam(r, "id"), req.ActualCost, req.ResolutionNotes)
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type cancelMaintenanceRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelMaintenance abandons the request. POST /api/v1/maintenance/{id}/cancel
func (h *Handlers) CancelMaintenance(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[cancelMaintenanceRequest](w, r)
	if !ok {
		return
	}

	m, err := h.maintenance.Cancel(r.Context(), urlParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, err, "maintenance request not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}
