package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/analytics"
	"github.com/scmmishra/adpair/internal/metrics"
	"github.com/scmmishra/adpair/internal/models"
	"github.com/scmmishra/adpair/internal/selector"
)

// PairSelector is what the serve path needs from the selector.
type PairSelector interface {
	SelectPair(ctx context.Context) (selector.Pair, error)
}

// ServeHandler answers the public ad script: pair selection and events.
type ServeHandler struct {
	DB       *sql.DB
	Log      *zap.Logger
	Selector PairSelector
	Recorder *analytics.Recorder
	Metrics  *metrics.Metrics
}

type pairSettings struct {
	MainAdOncePerDay      bool `json:"main_ad_once_per_day"`
	SecondaryAdOncePerDay bool `json:"secondary_ad_once_per_day"`
}

type pairResponse struct {
	Code     int           `json:"code"`
	Msg      string        `json:"msg"`
	Data     selector.Pair `json:"data"`
	Settings *pairSettings `json:"settings,omitempty"`
}

type clickRequest struct {
	AdID   int64  `json:"ad_id" validate:"required,gt=0"`
	Domain string `json:"domain"`
}

// RandomPair serves one main and one secondary ad. The domain comes from the
// query, else the Origin/Referer host. A blacklisted domain gets an empty
// pair without touching the selector.
func (h *ServeHandler) RandomPair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		domain = analytics.RequestDomain(r)
	}

	if domain != analytics.Unknown {
		listed, err := models.IsBlacklisted(ctx, h.DB, domain)
		if err != nil {
			storeFailure(w, h.Log, "check blacklist", err)
			return
		}
		if listed {
			h.Metrics.BlacklistHits.Inc()
			h.Metrics.PairsServed.WithLabelValues(metrics.PairBlacklisted).Inc()
			writeJSON(w, http.StatusOK, pairResponse{Code: http.StatusOK, Msg: "domain blacklisted"})
			return
		}
	}

	pair, err := h.Selector.SelectPair(ctx)
	if err != nil {
		storeFailure(w, h.Log, "select pair", err)
		return
	}

	result := metrics.PairServed
	if pair.Main == nil && pair.Secondary == nil {
		result = metrics.PairEmpty
	}
	h.Metrics.PairsServed.WithLabelValues(result).Inc()

	writeJSON(w, http.StatusOK, pairResponse{
		Code: http.StatusOK,
		Msg:  "success",
		Data: pair,
		Settings: &pairSettings{
			MainAdOncePerDay:      pair.Settings.MainAdOncePerDay,
			SecondaryAdOncePerDay: pair.Settings.SecondaryAdOncePerDay,
		},
	})
}

func (h *ServeHandler) PageView(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Recorder.PageView(r.Context(), analytics.ClientFromRequest(r)); err != nil {
		storeFailure(w, h.Log, "record page view", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

// Click records a click on an existing ad and returns its link so the script
// can navigate. An explicit domain in the body overrides the headers.
func (h *ServeHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ad, err := models.GetAd(r.Context(), h.DB, req.AdID)
	if err != nil {
		storeFailure(w, h.Log, "get ad", err)
		return
	}

	client := analytics.ClientFromRequest(r)
	if req.Domain != "" {
		client.Domain = req.Domain
	}
	if _, err := h.Recorder.Click(r.Context(), ad.ID, client); err != nil {
		storeFailure(w, h.Log, "record click", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": ad.Link})
}
