package domain

import (
	"strings"
	"time"
)

// Shift is a single tracked work shift. UserID scopes the shift to its
// owner's partition and never leaves the server. YearMonth and Day are
// derived from StartTime and position the shift inside the owner's
// partition hierarchy.
type Shift struct {
	ID        string
	UserID    string
	Workplace string
	PayRate   float64
	StartTime time.Time
	EndTime   time.Time
	Breaks    []time.Duration
	YearMonth string
	Day       int
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartitionFromStart derives the YearMonth ("YYYY-MM") and Day buckets a
// start time falls into. It is the single source of truth for the derived
// partition fields and must be re-applied whenever the start time changes.
func PartitionFromStart(start time.Time) (yearMonth string, day int) {
	return start.Format("2006-01"), start.Day()
}

// DerivePartition recomputes the YearMonth/Day buckets from StartTime.
func (s *Shift) DerivePartition() {
	s.YearMonth, s.Day = PartitionFromStart(s.StartTime)
}

// SamePartition reports whether the other shift lives in the same
// YearMonth/Day bucket. An update that leaves the bucket requires a move.
func (s *Shift) SamePartition(other *Shift) bool {
	return s.YearMonth == other.YearMonth && s.Day == other.Day
}

// ShiftDTO is the wire representation of a Shift. It deliberately has no
// owner field: the owner id is resolved from the authenticated request and
// must never appear in a payload in either direction. Break durations are
// minutes.
type ShiftDTO struct {
	ID        string    `json:"id,omitempty"`
	Workplace string    `json:"workplace" validate:"required"`
	PayRate   float64   `json:"payRate" validate:"gte=0"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Breaks    []float64 `json:"breaks" validate:"omitempty,dive,gte=0"`
}

func (s *Shift) DTO() ShiftDTO {
	return ShiftDTO{
		ID:        s.ID,
		Workplace: s.Workplace,
		PayRate:   s.PayRate,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Breaks:    BreaksToMinutes(s.Breaks),
	}
}

// ShiftFromDTO builds a Shift owned by userID. The owner id is supplied by
// the caller, never read from the payload, and the derived partition
// fields are computed as part of construction.
func ShiftFromDTO(userID string, dto ShiftDTO) *Shift {
	s := &Shift{
		ID:        dto.ID,
		UserID:    userID,
		Workplace: strings.TrimSpace(dto.Workplace),
		PayRate:   dto.PayRate,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Breaks:    MinutesToBreaks(dto.Breaks),
	}
	s.DerivePartition()
	return s
}

// BreaksToMinutes converts break durations to wire-level minute values.
func BreaksToMinutes(breaks []time.Duration) []float64 {
	minutes := make([]float64, 0, len(breaks))
	for _, b := range breaks {
		minutes = append(minutes, b.Minutes())
	}
	return minutes
}

// MinutesToBreaks converts wire-level minute values to durations,
// preserving order.
func MinutesToBreaks(minutes []float64) []time.Duration {
	breaks := make([]time.Duration, 0, len(minutes))
	for _, m := range minutes {
		breaks = append(breaks, time.Duration(m*float64(time.Minute)))
	}
	return breaks
}

// TotalBreak sums the unpaid break durations.
func TotalBreak(breaks []time.Duration) time.Duration {
	var total time.Duration
	for _, b := range breaks {
		total += b
	}
	return total
}
