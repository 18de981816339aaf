package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/models"
)

type BlacklistHandler struct {
	DB  *sql.DB
	Log *zap.Logger
}

type domainRequest struct {
	Domain string `json:"domain"`
}

func (h *BlacklistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := models.ListBlacklist(r.Context(), h.DB)
	if err != nil {
		storeFailure(w, h.Log, "list blacklist", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.BlacklistEntry{"data": entries})
}

func (h *BlacklistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	domain := strings.TrimSpace(req.Domain)
	added, err := models.AddBlacklistDomain(r.Context(), h.DB, domain)
	if err != nil {
		storeFailure(w, h.Log, "add blacklist domain", err)
		return
	}
	if !added {
		jsonError(w, "domain already in blacklist", http.StatusBadRequest)
		return
	}
	h.Log.Info("domain blacklisted", zap.String("domain", domain))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "domain": domain})
}

func (h *BlacklistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := models.RemoveBlacklistDomain(r.Context(), h.DB, id); err != nil {
		storeFailure(w, h.Log, "remove blacklist domain", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (h *BlacklistHandler) Check(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if err := validate.Var(domain, "required"); err != nil {
		jsonError(w, "domain is required", http.StatusBadRequest)
		return
	}
	listed, err := models.IsBlacklisted(r.Context(), h.DB, domain)
	if err != nil {
		storeFailure(w, h.Log, "check blacklist", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domain": domain, "blacklisted": listed})
}
