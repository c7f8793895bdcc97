package http

import (
	"net/http"

	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
	"github.com/Strob0t/LeaseForge/internal/service"
)

// Handlers bundles the services behind the HTTP API.
type Handlers struct {
	tenancy     *service.TenancyService
	ledger      *service.LedgerService
	maintenance *service.MaintenanceService
	booking     *service.BookingService
	stats       *service.StatsService
	queue       messagequeue.Queue
}

// NewHandlers creates the handler set. queue may be nil; it is only used for
// the health report.
func NewHandlers(
	tenancy *service.TenancyService,
	ledger *service.LedgerService,
	maintenance *service.MaintenanceService,
	booking *service.BookingService,
	stats *service.StatsService,
	queue messagequeue.Queue,
) *Handlers {
	return &Handlers{
		tenancy:     tenancy,
		ledger:      ledger,
		maintenance: maintenance,
		booking:     booking,
		stats:       stats,
		queue:       queue,
	}
}

// Health reports service liveness and queue connectivity.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.queue != nil {
		resp["nats_connected"] = h.queue.IsConnected()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStats returns the landlord's portfolio statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	landlordID := urlParam(r, "id")
	stats, err := h.stats.Portfolio(r.Context(), landlordID)
	if err != nil {
		writeDomainError(w, err, "landlord not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
