package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	userID, _ := ownerID(r)
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "user", userID, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, errorBody{Error: msg})
}

// badRequest translates validator errors into their English messages and
// echoes everything else verbatim.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
		return
	}
	h.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusUnauthorized, "authentication required")
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

// repositoryError maps repository outcomes to response statuses. notFound
// names the entity so 404 bodies stay useful without leaking internals.
func (h *Handler) repositoryError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.errorResponse(w, r, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.errorResponse(w, r, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrConflict):
		h.errorResponse(w, r, http.StatusConflict, "the record was modified concurrently or already exists, re-read and retry")
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.errorResponse(w, r, http.StatusServiceUnavailable, "storage temporarily unavailable, retry later")
	default:
		h.internalServerError(w, r, err)
	}
}
