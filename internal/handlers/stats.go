package handlers

import (
	"bytes"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/geo"
	"github.com/scmmishra/adpair/internal/metrics"
	"github.com/scmmishra/adpair/internal/models"
	"github.com/scmmishra/adpair/internal/report"
)

type StatsHandler struct {
	DB      *sql.DB
	Log     *zap.Logger
	Geo     *geo.Reader
	Metrics *metrics.Metrics
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	defer h.Metrics.ObserveReport("overview", time.Now())

	o, err := models.GetOverview(r.Context(), h.DB)
	if err != nil {
		storeFailure(w, h.Log, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	defer h.Metrics.ObserveReport("daily", time.Now())

	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	ds, err := models.GetDailyStats(r.Context(), h.DB, start, end)
	if err != nil {
		storeFailure(w, h.Log, "daily stats", err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *StatsHandler) Clicks(w http.ResponseWriter, r *http.Request) {
	defer h.Metrics.ObserveReport("clicks_by_domain_ip", time.Now())

	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	rep, err := models.ClicksByDomainIP(r.Context(), h.DB, start, end, cat, pageParams(r))
	if err != nil {
		storeFailure(w, h.Log, "clicks by domain/ip", err)
		return
	}
	h.Geo.AnnotateClicks(rep.Rows)
	writeJSON(w, http.StatusOK, rep)
}

func (h *StatsHandler) Visitors(w http.ResponseWriter, r *http.Request) {
	defer h.Metrics.ObserveReport("visitors_by_domain_ip", time.Now())

	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	rep, err := models.VisitorsByDomainIP(r.Context(), h.DB, start, end, pageParams(r))
	if err != nil {
		storeFailure(w, h.Log, "visitors by domain/ip", err)
		return
	}
	h.Geo.AnnotateVisits(rep.Rows)
	writeJSON(w, http.StatusOK, rep)
}

func (h *StatsHandler) ExportClicks(w http.ResponseWriter, r *http.Request) {
	defer h.Metrics.ObserveReport("clicks_export", time.Now())

	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	rows, err := report.AllClicks(r.Context(), h.DB, start, end, cat)
	if err != nil {
		storeFailure(w, h.Log, "export clicks", err)
		return
	}
	h.Geo.AnnotateClicks(rows)

	var buf bytes.Buffer
	if err := report.WriteClicks(&buf, rows); err != nil {
		storeFailure(w, h.Log, "export clicks", err)
		return
	}
	sendWorkbook(w, report.Filename("clicks_"+string(cat), start, end), buf.Bytes())
}

func (h *StatsHandler) ExportVisitors(w http.ResponseWriter, r *http.Request) {
	defer h.Metrics.ObserveReport("visitors_export", time.Now())

	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	rows, sum, err := report.AllVisitors(r.Context(), h.DB, start, end)
	if err != nil {
		storeFailure(w, h.Log, "export visitors", err)
		return
	}
	h.Geo.AnnotateVisits(rows)

	var buf bytes.Buffer
	if err := report.WriteVisitors(&buf, rows, sum); err != nil {
		storeFailure(w, h.Log, "export visitors", err)
		return
	}
	sendWorkbook(w, report.Filename("visitors", start, end), buf.Bytes())
}

// categoryParam reads type, defaulting to main.
func categoryParam(w http.ResponseWriter, r *http.Request) (models.Category, bool) {
	raw := r.URL.Query().Get("type")
	if raw == "" {
		return models.CategoryMain, true
	}
	cat, err := models.ParseCategory(raw)
	if err != nil {
		jsonError(w, "type must be main or secondary", http.StatusBadRequest)
		return "", false
	}
	return cat, true
}

func sendWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
