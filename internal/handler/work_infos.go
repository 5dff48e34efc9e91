package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/utils"
)

func (h *Handler) ListWorkInfos(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	infos, err := h.repository.ListWorkInfos(r.Context(), userID)
	if err != nil {
		h.repositoryError(w, r, err, "work info not found")
		return
	}

	dtos := make([]domain.WorkInfoDTO, 0, len(infos))
	for _, info := range infos {
		dtos = append(dtos, info.DTO())
	}
	h.writeJSON(w, r, http.StatusOK, dtos)
}

func (h *Handler) GetWorkInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing work info id"))
		return
	}

	info, err := h.repository.GetWorkInfoByID(r.Context(), userID, id)
	if err != nil {
		h.repositoryError(w, r, err, "work info not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, info.DTO())
}

// CreateWorkInfo upserts the caller's record for a workplace: the first
// post creates it (201), later posts merge the new pay rates into the
// stored set (200). The status distinction is part of the contract.
func (h *Handler) CreateWorkInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	var dto domain.WorkInfoDTO
	if err := h.readJSON(r, &dto); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		h.badRequest(w, r, err)
		return
	}

	info := domain.WorkInfoFromDTO(userID, dto)
	if err := utils.ValidateWorkInfo(info); err != nil {
		h.badRequest(w, r, err)
		return
	}

	merged, created, err := h.repository.UpsertWorkInfo(r.Context(), info)
	if err != nil {
		h.repositoryError(w, r, err, "work info not found")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, merged.DTO())
}

// DeleteWorkInfo removes the whole record, or just one pay rate when a
// payRate query parameter is supplied. Whole-record deletion is
// idempotent; the targeted rate form 404s when the record or rate is
// absent.
func (h *Handler) DeleteWorkInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing work info id"))
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("payRate")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			h.badRequest(w, r, errors.New("invalid payRate"))
			return
		}

		if _, err := h.repository.DeleteWorkInfoPayRate(r.Context(), userID, id, rate); err != nil {
			h.repositoryError(w, r, err, "work info or pay rate not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.repository.DeleteWorkInfo(r.Context(), userID, id); err != nil {
		h.repositoryError(w, r, err, "work info not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
