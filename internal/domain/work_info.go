package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// workInfoNamespace seeds the deterministic WorkInfo identifiers. Changing
// it would orphan every stored WorkInfo document.
var workInfoNamespace = uuid.MustParse("9f2c1d6e-4b3a-4f8e-9c5d-7a1e8b0d2c4f")

// WorkInfoID derives the identifier for an owner's workplace record.
// Workplace names are immutable after creation, so the id is stable for
// the lifetime of the record and makes the merge upsert a single-key
// read-modify-write.
func WorkInfoID(userID, workplace string) string {
	return uuid.NewSHA1(workInfoNamespace, []byte(userID+"/"+workplace)).String()
}

// WorkInfo holds the distinct pay rates an owner has recorded for one
// workplace.
type WorkInfo struct {
	ID        string
	UserID    string
	Workplace string
	PayRates  []float64
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MergePayRates unions the incoming rates into the stored set. The result
// stays sorted and duplicate-free.
func (w *WorkInfo) MergePayRates(rates []float64) {
	w.PayRates = NormalizeRates(append(w.PayRates, rates...))
}

// RemovePayRate drops a single rate from the set and reports whether it
// was present.
func (w *WorkInfo) RemovePayRate(rate float64) bool {
	i := slices.Index(w.PayRates, rate)
	if i < 0 {
		return false
	}
	w.PayRates = slices.Delete(w.PayRates, i, i+1)
	return true
}

// NormalizeRates sorts the rates and collapses duplicates.
func NormalizeRates(rates []float64) []float64 {
	out := slices.Clone(rates)
	slices.Sort(out)
	return slices.Compact(out)
}

type WorkInfoDTO struct {
	ID        string    `json:"id,omitempty"`
	Workplace string    `json:"workplace" validate:"required"`
	PayRates  []float64 `json:"payRates" validate:"omitempty,dive,gte=0"`
}

func (w *WorkInfo) DTO() WorkInfoDTO {
	return WorkInfoDTO{
		ID:        w.ID,
		Workplace: w.Workplace,
		PayRates:  slices.Clone(w.PayRates),
	}
}

// WorkInfoFromDTO builds a WorkInfo owned by userID with a normalized rate
// set and the deterministic identifier.
func WorkInfoFromDTO(userID string, dto WorkInfoDTO) *WorkInfo {
	workplace := strings.TrimSpace(dto.Workplace)
	return &WorkInfo{
		ID:        WorkInfoID(userID, workplace),
		UserID:    userID,
		Workplace: workplace,
		PayRates:  NormalizeRates(dto.PayRates),
	}
}
