package handlers

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/models"
)

type SettingsHandler struct {
	DB  *sql.DB
	Log *zap.Logger
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := models.GetAdSettings(r.Context(), h.DB)
	if err != nil {
		storeFailure(w, h.Log, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Patch writes only the fields present in the body.
func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var p models.AdSettingsPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := models.UpdateAdSettings(r.Context(), h.DB, p); err != nil {
		storeFailure(w, h.Log, "update settings", err)
		return
	}
	h.Log.Info("ad settings updated", zap.Any("patch", p))
	writeJSON(w, http.StatusOK, okBody)
}
