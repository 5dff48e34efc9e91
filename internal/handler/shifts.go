package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/repository"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/utils"
)

// parseShiftFilter reads the list/bulk-delete query parameters. Date
// parts must be supplied outside-in: a month needs a year, a day needs a
// month.
func parseShiftFilter(r *http.Request) (repository.ShiftFilter, error) {
	filter := repository.ShiftFilter{}
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return filter, errors.New("invalid year")
		}
		filter.Year = year
	}
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		if filter.Year == 0 {
			return filter, errors.New("month requires year")
		}
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return filter, errors.New("invalid month")
		}
		filter.Month = time.Month(month)
	}
	if raw := strings.TrimSpace(q.Get("day")); raw != "" {
		if filter.Month == 0 {
			return filter, errors.New("day requires month")
		}
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 || day > 31 {
			return filter, errors.New("invalid day")
		}
		filter.Day = day
	}
	if raw := strings.TrimSpace(q.Get("startTime")); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("invalid startTime")
		}
		filter.Start = start
	}
	if raw := strings.TrimSpace(q.Get("endTime")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("invalid endTime")
		}
		filter.End = end
	}
	for _, raw := range q["id"] {
		id := strings.TrimSpace(raw)
		if id == "" {
			return filter, errors.New("invalid id filter")
		}
		filter.IDs = append(filter.IDs, id)
	}

	return filter, nil
}

func shiftDTOs(shifts []*domain.Shift) []domain.ShiftDTO {
	dtos := make([]domain.ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, s.DTO())
	}
	return dtos
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	filter, err := parseShiftFilter(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.repository.ListShifts(r.Context(), userID, filter)
	if err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, shiftDTOs(shifts))
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing shift id"))
		return
	}

	s, err := h.repository.GetShiftByID(r.Context(), userID, id)
	if err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, s.DTO())
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	var dto domain.ShiftDTO
	if err := h.readJSON(r, &dto); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		h.badRequest(w, r, err)
		return
	}

	s := domain.ShiftFromDTO(userID, dto)
	if err := utils.ValidateShift(s); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertShift(r.Context(), s); err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	h.writeJSON(w, r, http.StatusCreated, s.DTO())
}

// BatchCreateShifts validates the whole batch first; one bad entry
// rejects everything and nothing is persisted.
func (h *Handler) BatchCreateShifts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	var dtos []domain.ShiftDTO
	if err := h.readJSON(r, &dtos); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if len(dtos) == 0 {
		h.badRequest(w, r, errors.New("empty batch"))
		return
	}

	shifts := make([]*domain.Shift, 0, len(dtos))
	for i, dto := range dtos {
		if err := h.validate.Struct(dto); err != nil {
			h.badRequest(w, r, fmt.Errorf("shift %d: %w", i, err))
			return
		}
		s := domain.ShiftFromDTO(userID, dto)
		if err := utils.ValidateShift(s); err != nil {
			h.badRequest(w, r, fmt.Errorf("shift %d: %w", i, err))
			return
		}
		shifts = append(shifts, s)
	}

	created, err := h.repository.BatchInsertShifts(r.Context(), shifts)
	if err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	h.writeJSON(w, r, http.StatusCreated, shiftDTOs(created))
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing shift id"))
		return
	}

	var dto domain.ShiftDTO
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

	current, err := h.repository.GetShiftByID(r.Context(), userID, id)
	if err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	updated := domain.ShiftFromDTO(userID, dto)
	if err := utils.ValidateShift(updated); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShift(r.Context(), current, updated); err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, updated.DTO())
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.badRequest(w, r, errors.New("missing shift id"))
		return
	}

	if err := h.repository.DeleteShift(r.Context(), userID, id); err != nil {
		h.repositoryError(w, r, err, "shift not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteShifts removes every shift matching the query filters. A bare
// delete with no filter is refused rather than emptying the partition.
func (h *Handler) DeleteShifts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.unauthorized(w, r)
		return
	}

	filter, err := parseShiftFilter(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if filter.IsZero() {
		h.badRequest(w, r, errors.New("at least one filter is required"))
		return
	}

	if _, err := h.repository.DeleteShiftsByFilter(r.Context(), userID, filter); err != nil {
		h.repositoryError(w, r, err, "no shifts matched")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
