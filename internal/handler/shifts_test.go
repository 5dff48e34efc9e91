package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

func shiftPayload(start, end time.Time) map[string]any {
	return map[string]any{
		"workplace": "Cafe Nero",
		"payRate":   24.5,
		"startTime": start.Format(time.RFC3339),
		"endTime":   end.Format(time.RFC3339),
		"breaks":    []float64{30},
	}
}

func TestShiftLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	rec := do(t, h, http.MethodPost, "/api/shifts", token, shiftPayload(start, end))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.ShiftDTO](t, rec)
	require.NotEmpty(t, created.ID)

	// the owner id must never leak into a payload
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "user-1")
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "userid")

	rec = do(t, h, http.MethodGet, "/api/shifts/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.ShiftDTO](t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Cafe Nero", got.Workplace)
	assert.Equal(t, 24.5, got.PayRate)
	assert.True(t, start.Equal(got.StartTime))
	assert.True(t, end.Equal(got.EndTime))
	assert.Equal(t, []float64{30}, got.Breaks)

	update := shiftPayload(start.Add(time.Hour), end.Add(time.Hour))
	update["payRate"] = 26.0
	rec = do(t, h, http.MethodPut, "/api/shifts/"+created.ID, token, update)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.ShiftDTO](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 26.0, updated.PayRate)

	rec = do(t, h, http.MethodDelete, "/api/shifts/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/shifts/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateShiftValidation(t *testing.T) {
	h, fake := newTestHandler(t)
	token := signToken(t, "user-1")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing workplace", func(p map[string]any) { delete(p, "workplace") }},
		{"blank workplace", func(p map[string]any) { p["workplace"] = "   " }},
		{"negative pay rate", func(p map[string]any) { p["payRate"] = -1 }},
		{"start after end", func(p map[string]any) { p["startTime"] = start.Add(10 * time.Hour).Format(time.RFC3339) }},
		{"negative break", func(p map[string]any) { p["breaks"] = []float64{-5} }},
		{"all break", func(p map[string]any) { p["breaks"] = []float64{480} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := shiftPayload(start, start.Add(8*time.Hour))
			tc.mutate(payload)

			rec := do(t, h, http.MethodPost, "/api/shifts", token, payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.Equal(t, 0, fake.Len("Shifts"), "nothing may be persisted on validation failure")
}

func TestBatchCreateShiftsAllOrNothing(t *testing.T) {
	h, fake := newTestHandler(t)
	token := signToken(t, "user-1")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	good1 := shiftPayload(start, start.Add(8*time.Hour))
	bad := shiftPayload(start.Add(24*time.Hour), start.Add(24*time.Hour)) // start == end
	good2 := shiftPayload(start.Add(48*time.Hour), start.Add(56*time.Hour))

	rec := do(t, h, http.MethodPost, "/api/shifts/batch", token, []map[string]any{good1, bad, good2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, fake.Len("Shifts"), "one invalid entity must reject the whole batch")

	rec = do(t, h, http.MethodPost, "/api/shifts/batch", token, []map[string]any{good1, good2})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[[]domain.ShiftDTO](t, rec)
	assert.Len(t, created, 2)
	assert.Equal(t, 2, fake.Len("Shifts"))
}

func TestUpdateShiftMovesMonths(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rec := do(t, h, http.MethodPost, "/api/shifts", token, shiftPayload(start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.ShiftDTO](t, rec)

	julyStart := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
	rec = do(t, h, http.MethodPut, "/api/shifts/"+created.ID, token, shiftPayload(julyStart, julyStart.Add(8*time.Hour)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/shifts?year=2025&month=6", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.ShiftDTO](t, rec))

	rec = do(t, h, http.MethodGet, "/api/shifts?year=2025&month=7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	july := decode[[]domain.ShiftDTO](t, rec)
	require.Len(t, july, 1)
	assert.Equal(t, created.ID, july[0].ID)
}

func TestListShiftsRejectsMalformedFilters(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	for _, path := range []string{
		"/api/shifts?month=6",         // month without year
		"/api/shifts?year=2025&day=2", // day without month
		"/api/shifts?year=abc",
		"/api/shifts?year=2025&month=13",
		"/api/shifts?startTime=yesterday",
	} {
		rec := do(t, h, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestUpdateShiftIDMismatch(t *testing.T) {
	h, _ := newTestHandler(t)
	token := signToken(t, "user-1")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rec := do(t, h, http.MethodPost, "/api/shifts", token, shiftPayload(start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.ShiftDTO](t, rec)

	payload := shiftPayload(start, start.Add(8*time.Hour))
	payload["id"] = "some-other-id"
	rec = do(t, h, http.MethodPut, "/api/shifts/"+created.ID, token, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkDeleteShifts(t *testing.T) {
	h, fake := newTestHandler(t)
	token := signToken(t, "user-1")

	for day := 2; day <= 4; day++ {
		start := time.Date(2025, 6, day, 9, 0, 0, 0, time.UTC)
		rec := do(t, h, http.MethodPost, "/api/shifts", token, shiftPayload(start, start.Add(8*time.Hour)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// refusing an unfiltered bulk delete
	rec := do(t, h, http.MethodDelete, "/api/shifts", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/shifts?year=2025&month=5", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/shifts?year=2025&month=6", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, fake.Len("Shifts"))
}

func TestShiftOwnersAreIsolated(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := signToken(t, "alice")
	bob := signToken(t, "bob")

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rec := do(t, h, http.MethodPost, "/api/shifts", alice, shiftPayload(start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, rec.Code)
	aliceShift := decode[domain.ShiftDTO](t, rec)

	rec = do(t, h, http.MethodPost, "/api/shifts", bob, shiftPayload(start, start.Add(8*time.Hour)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/shifts", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bobShifts := decode[[]domain.ShiftDTO](t, rec)
	require.Len(t, bobShifts, 1)
	assert.NotEqual(t, aliceShift.ID, bobShifts[0].ID)

	rec = do(t, h, http.MethodGet, "/api/shifts/"+aliceShift.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
