package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/novavoice/nova-voice/internal/widget"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// Handler serves the static landing content.
type Handler struct {
	catalog *Catalog
	widget  widget.EmbedConfig
	logger  *logging.Logger
}

func NewHandler(catalog *Catalog, embed widget.EmbedConfig, logger *logging.Logger) *Handler {
	if catalog == nil {
		panic("site: catalog required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: catalog, widget: embed, logger: logger}
}

// GetContent handles GET /api/site/content.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog)
}

// GetPricing handles GET /api/site/pricing?billing=monthly|yearly.
func (h *Handler) GetPricing(w http.ResponseWriter, r *http.Request) {
	billing, err := ParseBilling(r.URL.Query().Get("billing"))
	if err != nil {
		http.Error(w, "billing must be monthly or yearly", http.StatusBadRequest)
		return
	}
	view, err := h.catalog.PricingFor(billing)
	if err != nil {
		if errors.Is(err, ErrUnknownBilling) {
			http.Error(w, "billing must be monthly or yearly", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to price plans", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetWidget handles GET /api/site/widget.
func (h *Handler) GetWidget(w http.ResponseWriter, r *http.Request) {
	if !h.widget.Enabled() {
		http.Error(w, "voice agent not configured", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.widget)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
