package reports

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/novavoice/nova-voice/internal/assessment"
	"github.com/novavoice/nova-voice/pkg/logging"
)

const maxExportRows = 10000

// Handler serves the admin export endpoints.
type Handler struct {
	reader   assessment.Reader
	archiver *S3Archiver
	logger   *logging.Logger
	now      func() time.Time
}

func NewHandler(reader assessment.Reader, archiver *S3Archiver, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{reader: reader, archiver: archiver, logger: logger, now: time.Now}
}

// ArchiveResponse is returned after an export is stored in S3.
type ArchiveResponse struct {
	Key  string `json:"key"`
	Rows int    `json:"rows"`
}

// Export handles GET /admin/assessments/export.xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, rows, err := h.render(r, filter)
	if err != nil {
		h.logger.Error("assessment export failed", "error", err)
		http.Error(w, "failed to export assessments", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("assessments-%s.xlsx", h.now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Archive handles POST /admin/assessments/export/archive.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	if !h.archiver.Enabled() {
		http.Error(w, ErrArchiveDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	filter, err := ParseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, rows, err := h.render(r, filter)
	if err != nil {
		h.logger.Error("assessment export failed", "error", err)
		http.Error(w, "failed to export assessments", http.StatusInternalServerError)
		return
	}

	entry := ManifestEntry{Rows: rows}
	if !filter.Since.IsZero() {
		entry.Since = filter.Since.UTC().Format(time.RFC3339)
	}
	for _, lvl := range filter.RiskLevels {
		entry.RiskLevels = append(entry.RiskLevels, string(lvl))
	}
	key, err := h.archiver.Archive(r.Context(), data, entry, h.now())
	if err != nil {
		h.logger.Error("assessment export archive failed", "error", err)
		http.Error(w, "failed to archive export", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ArchiveResponse{Key: key, Rows: rows})
}

func (h *Handler) render(r *http.Request, filter assessment.ListFilter) ([]byte, int, error) {
	records, err := h.reader.List(r.Context(), filter)
	if err != nil {
		return nil, 0, err
	}
	data, err := RenderWorkbook(records)
	if err != nil {
		return nil, 0, err
	}
	return data, len(records), nil
}

// ParseFilter reads since (RFC3339 or YYYY-MM-DD), repeatable risk_level and
// limit from the query string.
func ParseFilter(r *http.Request) (assessment.ListFilter, error) {
	q := r.URL.Query()
	filter := assessment.ListFilter{Limit: maxExportRows}

	if raw := strings.TrimSpace(q.Get("since")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ts, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			return filter, fmt.Errorf("%w: since %q", ErrInvalidFilter, raw)
		}
		filter.Since = ts.UTC()
	}

	for _, raw := range q["risk_level"] {
		lvl := assessment.RiskLevel(strings.ToUpper(strings.TrimSpace(raw)))
		switch lvl {
		case assessment.RiskLow, assessment.RiskMedium, assessment.RiskHigh:
			filter.RiskLevels = append(filter.RiskLevels, lvl)
		default:
			return filter, fmt.Errorf("%w: risk_level %q", ErrInvalidFilter, raw)
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("%w: limit %q", ErrInvalidFilter, raw)
		}
		if limit < maxExportRows {
			filter.Limit = limit
		}
	}
	return filter, nil
}

