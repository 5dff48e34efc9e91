package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

func templatePayload(name string) map[string]any {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return map[string]any{
		"name":      name,
		"workplace": "Cafe Nero",
		"payRate":   24.5,
		"startTime": start.Format(time.RFC3339),
		"endTime":   start.Add(8 * time.Hour).Format(time.RFC3339),
		"breaks":    []float64{30},
	}
}

func TestShiftTemplateUpsert(t *testing.T) {
	h, fake := newTestHandler(t)
	token := signToken(t, "user-1")

	rec := do(t, h, http.MethodPost, "/api/shifttemplates", token, templatePayload("Monday morning"))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.ShiftTemplateDTO](t, rec)
	require.NotEmpty(t, created.ID)

	replacement := templatePayload("Monday morning")
	replacement["payRate"] = 30.0
	delete(replacement, "breaks")

	rec = do(t, h, http.MethodPost, "/api/shifttemplates", token, replacement)
	require.Equal(t, http.StatusOK, rec.Code, "posting an existing name replaces")
	replaced := decode[domain.ShiftTemplateDTO](t, rec)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, 30.0, replaced.PayRate)
	assert.Empty(t, replaced.Breaks, "replace overwrites every field")
	assert.Equal(t, 1, fake.Len("ShiftTemplates"))
}

func TestShiftTemplateLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	rec := do(t, h, http.MethodPost, "/api/shifttemplates", token, templatePayload("Monday morning"))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.ShiftTemplateDTO](t, rec)

	rec = do(t, h, http.MethodGet, "/api/shifttemplates/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Monday morning", decode[domain.ShiftTemplateDTO](t, rec).Name)

	rename := templatePayload("Tuesday morning")
	rec = do(t, h, http.MethodPut, "/api/shifttemplates/"+created.ID, token, rename)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/shifttemplates/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tuesday morning", decode[domain.ShiftTemplateDTO](t, rec).Name)

	rec = do(t, h, http.MethodDelete, "/api/shifttemplates/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/shifttemplates/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/shifttemplates/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShiftTemplateRenameConflict(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	rec := do(t, h, http.MethodPost, "/api/shifttemplates", token, templatePayload("Monday morning"))
	require.Equal(t, http.StatusCreated, rec.Code)
	a := decode[domain.ShiftTemplateDTO](t, rec)

	rec = do(t, h, http.MethodPost, "/api/shifttemplates", token, templatePayload("Tuesday morning"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// renaming over a taken name is a conflict
	rec = do(t, h, http.MethodPut, "/api/shifttemplates/"+a.ID, token, templatePayload("Tuesday morning"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestShiftTemplateValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	payload := templatePayload("   ")
	rec := do(t, h, http.MethodPost, "/api/shifttemplates", token, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload = templatePayload("Monday morning")
	payload["startTime"] = payload["endTime"]
	rec = do(t, h, http.MethodPost, "/api/shifttemplates", token, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/shifttemplates/missing", token, templatePayload("Monday morning"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
