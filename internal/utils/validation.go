package utils

import (
	"fmt"
	"time"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

// validateShiftTimes applies the invariants shared by shifts and shift
// templates: both timestamps provided, start strictly before end, every
// break non-negative, and the break total strictly below the shift span
// (a shift cannot be all break).
func validateShiftTimes(start, end time.Time, breaks []time.Duration) error {
	if start.IsZero() {
		return &domain.ValidationError{Field: "startTime", Reason: "must be provided"}
	}
	if end.IsZero() {
		return &domain.ValidationError{Field: "endTime", Reason: "must be provided"}
	}
	if !start.Before(end) {
		return &domain.ValidationError{Field: "startTime", Reason: "must be before endTime"}
	}
	for i, b := range breaks {
		if b < 0 {
			return &domain.ValidationError{Field: "breaks", Reason: fmt.Sprintf("break %d must not be negative", i)}
		}
	}
	if domain.TotalBreak(breaks) >= end.Sub(start) {
		return &domain.ValidationError{Field: "breaks", Reason: "total break time must be shorter than the shift"}
	}
	return nil
}

func ValidateShift(s *domain.Shift) error {
	if s.Workplace == "" {
		return &domain.ValidationError{Field: "workplace", Reason: "must not be empty"}
	}
	if s.PayRate < 0 {
		return &domain.ValidationError{Field: "payRate", Reason: "must not be negative"}
	}
	return validateShiftTimes(s.StartTime, s.EndTime, s.Breaks)
}

func ValidateShiftTemplate(t *domain.ShiftTemplate) error {
	if t.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if t.Workplace == "" {
		return &domain.ValidationError{Field: "workplace", Reason: "must not be empty"}
	}
	if t.PayRate < 0 {
		return &domain.ValidationError{Field: "payRate", Reason: "must not be negative"}
	}
	return validateShiftTimes(t.StartTime, t.EndTime, t.Breaks)
}

func ValidateWorkInfo(w *domain.WorkInfo) error {
	if w.Workplace == "" {
		return &domain.ValidationError{Field: "workplace", Reason: "must not be empty"}
	}
	for _, rate := range w.PayRates {
		if rate < 0 {
			return &domain.ValidationError{Field: "payRates", Reason: "rates must not be negative"}
		}
	}
	return nil
}
