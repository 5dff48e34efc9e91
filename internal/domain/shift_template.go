package domain

import (
	"strings"
	"time"
)

// ShiftTemplate is a reusable shift definition. Name is unique per owner
// and doubles as the upsert key.
type ShiftTemplate struct {
	ID        string
	UserID    string
	Name      string
	Workplace string
	PayRate   float64
	StartTime time.Time
	EndTime   time.Time
	Breaks    []time.Duration
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ShiftTemplateDTO struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required"`
	Workplace string    `json:"workplace" validate:"required"`
	PayRate   float64   `json:"payRate" validate:"gte=0"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Breaks    []float64 `json:"breaks" validate:"omitempty,dive,gte=0"`
}

func (t *ShiftTemplate) DTO() ShiftTemplateDTO {
	return ShiftTemplateDTO{
		ID:        t.ID,
		Name:      t.Name,
		Workplace: t.Workplace,
		PayRate:   t.PayRate,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		Breaks:    BreaksToMinutes(t.Breaks),
	}
}

// ShiftTemplateFromDTO builds a ShiftTemplate owned by userID. The owner
// id comes from the caller, never from the payload.
func ShiftTemplateFromDTO(userID string, dto ShiftTemplateDTO) *ShiftTemplate {
	return &ShiftTemplate{
		ID:        dto.ID,
		UserID:    userID,
		Name:      strings.TrimSpace(dto.Name),
		Workplace: strings.TrimSpace(dto.Workplace),
		PayRate:   dto.PayRate,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Breaks:    MinutesToBreaks(dto.Breaks),
	}
}
