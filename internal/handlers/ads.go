package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/models"
)

// UploadPrefix is the public URL prefix of stored creatives.
const UploadPrefix = "/static/uploads/"

type AdHandler struct {
	DB             *sql.DB
	Log            *zap.Logger
	StaticDir      string
	MaxUploadBytes int64
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type redirectRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Upload creates an ad from a multipart form with a creative file, a link
// and the optional is_main / x_redirect_enabled flags.
func (h *AdHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	link := strings.TrimSpace(r.PostFormValue("link"))
	if err := validate.Var(link, "required"); err != nil {
		jsonError(w, "link is required", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imgURL, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.Log.Error("save upload failed", zap.Error(err))
		jsonError(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	ad := &models.Ad{
		ImgURL:           imgURL,
		Link:             link,
		IsMain:           formBool(r, "is_main", false),
		XRedirectEnabled: formBool(r, "x_redirect_enabled", true),
	}
	if err := models.CreateAd(r.Context(), h.DB, ad); err != nil {
		storeFailure(w, h.Log, "create ad", err)
		return
	}

	h.Log.Info("ad created", zap.Int64("id", ad.ID), zap.String("category", string(ad.Category())))
	writeJSON(w, http.StatusCreated, map[string]int64{"id": ad.ID})
}

func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.AdFilter{
		Category: models.Category(q.Get("type")),
		Status:   models.Status(q.Get("status")),
	}
	if s := q.Get("start"); s != "" {
		t, err := parseDay(s)
		if err != nil {
			jsonError(w, "start must be a date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		f.Start = t
	}
	if s := q.Get("end"); s != "" {
		t, err := parseDay(s)
		if err != nil {
			jsonError(w, "end must be a date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		// A bare date includes the whole day.
		if len(s) == len(models.DayLayout) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.End = t
	}

	ads, err := models.ListAds(r.Context(), h.DB, f)
	if err != nil {
		storeFailure(w, h.Log, "list ads", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Ad{"data": ads})
}

func (h *AdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ad, err := models.GetAd(r.Context(), h.DB, id)
	if err != nil {
		storeFailure(w, h.Log, "get ad", err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

// Update applies the form fields that are present. A new file replaces the
// creative; the old file is left on disk.
func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if _, err := models.GetAd(r.Context(), h.DB, id); err != nil {
		storeFailure(w, h.Log, "get ad", err)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	var patch models.AdPatch
	if _, ok := r.PostForm["link"]; ok {
		link := strings.TrimSpace(r.PostFormValue("link"))
		if link == "" {
			jsonError(w, "link cannot be empty", http.StatusBadRequest)
			return
		}
		patch.Link = &link
	}
	if _, ok := r.PostForm["is_main"]; ok {
		v := formBool(r, "is_main", false)
		patch.IsMain = &v
	}
	if _, ok := r.PostForm["x_redirect_enabled"]; ok {
		v := formBool(r, "x_redirect_enabled", true)
		patch.XRedirectEnabled = &v
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		imgURL, err := h.saveUpload(file, header.Filename)
		if err != nil {
			h.Log.Error("save upload failed", zap.Error(err))
			jsonError(w, "failed to store file", http.StatusInternalServerError)
			return
		}
		patch.ImgURL = &imgURL
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		jsonError(w, "invalid file", http.StatusBadRequest)
		return
	}

	if err := models.UpdateAd(r.Context(), h.DB, id, patch); err != nil {
		storeFailure(w, h.Log, "update ad", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := models.DeleteAd(r.Context(), h.DB, id); err != nil {
		storeFailure(w, h.Log, "delete ad", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (h *AdHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := models.UpdateAdStatus(r.Context(), h.DB, id, models.Status(req.Status)); err != nil {
		storeFailure(w, h.Log, "update ad status", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (h *AdHandler) UpdateRedirect(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req redirectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := models.UpdateAdRedirect(r.Context(), h.DB, id, *req.Enabled); err != nil {
		storeFailure(w, h.Log, "update ad redirect", err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (h *AdHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	err := r.ParseMultipartForm(h.MaxUploadBytes)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, "file too large", http.StatusRequestEntityTooLarge)
		return false
	}
	jsonError(w, "invalid form", http.StatusBadRequest)
	return false
}

// saveUpload stores the creative as <uuid><ext> and returns its public URL.
func (h *AdHandler) saveUpload(src multipart.File, filename string) (string, error) {
	dir := filepath.Join(h.StaticDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ToLower(filepath.Ext(filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return UploadPrefix + name, nil
}

func formBool(r *http.Request, key string, def bool) bool {
	v, ok := r.PostForm[key]
	if !ok || len(v) == 0 {
		return def
	}
	return models.ParseBool(strings.TrimSpace(v[0]))
}
