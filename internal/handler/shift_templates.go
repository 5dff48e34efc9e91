package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/utils"
)

func (h *Handler) ListShiftTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	templates, err := h.repository.ListShiftTemplates(r.Context(), userID)
	if err != nil {
		h.repositoryError(w, r, err, "shift template not found")
		return
	}

	dtos := make([]domain.ShiftTemplateDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, t.DTO())
	}
	h.writeJSON(w, r, http.StatusOK, dtos)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing shift template id"))
		return
	}

	t, err := h.repository.GetShiftTemplateByID(r.Context(), userID, id)
	if err != nil {
		h.repositoryError(w, r, err, "shift template not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, t.DTO())
}

// CreateShiftTemplate upserts by template name: a new name is created
// (201), an existing one has every mutable field replaced (200). Unlike
// work infos, this replaces rather than merges.
func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	var dto domain.ShiftTemplateDTO
	if err := h.readJSON(r, &dto); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		h.badRequest(w, r, err)
		return
	}

	t := domain.ShiftTemplateFromDTO(userID, dto)
	if err := utils.ValidateShiftTemplate(t); err != nil {
		h.badRequest(w, r, err)
		return
	}

	saved, created, err := h.repository.UpsertShiftTemplate(r.Context(), t)
	if err != nil {
		h.repositoryError(w, r, err, "shift template not found")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, saved.DTO())
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing shift template id"))
		return
	}

	var dto domain.ShiftTemplateDTO
	if err := h.readJSON(r, &dto); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if dto.ID != "" && dto.ID != id {
		h.badRequest(w, r, errors.New("body id does not match route id"))
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		h.badRequest(w, r, err)
		return
	}

	current, err := h.repository.GetShiftTemplateByID(r.Context(), userID, id)
	if err != nil {
		h.repositoryError(w, r, err, "shift template not found")
		return
	}

	updated := domain.ShiftTemplateFromDTO(userID, dto)
	if err := utils.ValidateShiftTemplate(updated); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShiftTemplate(r.Context(), current, updated); err != nil {
		h.repositoryError(w, r, err, "shift template not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, updated.DTO())
}

func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing shift template id"))
		return
	}

	if err := h.repository.DeleteShiftTemplate(r.Context(), userID, id); err != nil {
		h.repositoryError(w, r, err, "shift template not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
