package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/models"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

var okBody = map[string]bool{"ok": true}

// decodeJSON decodes the body into v and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			jsonError(w, fe.Field()+" is "+describeTag(fe.Tag()), http.StatusBadRequest)
			return false
		}
		jsonError(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "oneof":
		return "not an allowed value"
	default:
		return "invalid"
	}
}

// storeFailure maps a model error to a response. Validation and not-found
// errors are the caller's fault; anything else is logged and hidden.
func storeFailure(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), models.ErrValidation.Error()+": ")
		jsonError(w, msg, http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	default:
		log.Error(op+" failed", zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// parseDay accepts YYYY-MM-DD or RFC 3339.
func parseDay(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(models.DayLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// dateRange reads the required start and end query parameters.
func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	start, err := parseDay(q.Get("start"))
	if err != nil {
		jsonError(w, "start must be a date (YYYY-MM-DD)", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDay(q.Get("end"))
	if err != nil {
		jsonError(w, "end must be a date (YYYY-MM-DD)", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// pageParams applies the boundary defaults: page < 1 is 1, a missing or
// non-positive page_size is DefaultPageSize. The upper clamp is NewPage's.
func pageParams(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size < 1 {
		size = models.DefaultPageSize
	}
	return models.NewPage(page, size)
}
