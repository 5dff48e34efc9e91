package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

// shiftItem is the persisted layout of a shift. The sort key encodes the
// derived YearMonth/Day buckets, so a start-time change that leaves the
// bucket changes the key and forces a move.
type shiftItem struct {
	PK           string    `dynamodbav:"pk"`
	SK           string    `dynamodbav:"sk"`
	ID           string    `dynamodbav:"id"`
	UserID       string    `dynamodbav:"user_id"`
	Workplace    string    `dynamodbav:"workplace"`
	PayRate      float64   `dynamodbav:"pay_rate"`
	StartTime    string    `dynamodbav:"start_time"`
	EndTime      string    `dynamodbav:"end_time"`
	BreakMinutes []float64 `dynamodbav:"breaks"`
	YearMonth    string    `dynamodbav:"year_month"`
	Day          int       `dynamodbav:"day"`
	Version      int64     `dynamodbav:"version"`
	CreatedAt    string    `dynamodbav:"created_at"`
	UpdatedAt    string    `dynamodbav:"updated_at"`
}

const shiftSKPrefix = "SHIFT#"

func shiftSK(yearMonth string, day int, id string) string {
	return fmt.Sprintf("%s%s#%02d#%s", shiftSKPrefix, yearMonth, day, id)
}

func newShiftItem(s *domain.Shift) shiftItem {
	return shiftItem{
		PK:           userPK(s.UserID),
		SK:           shiftSK(s.YearMonth, s.Day, s.ID),
		ID:           s.ID,
		UserID:       s.UserID,
		Workplace:    s.Workplace,
		PayRate:      s.PayRate,
		StartTime:    s.StartTime.Format(time.RFC3339Nano),
		EndTime:      s.EndTime.Format(time.RFC3339Nano),
		BreakMinutes: domain.BreaksToMinutes(s.Breaks),
		YearMonth:    s.YearMonth,
		Day:          s.Day,
		Version:      s.Version,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (it shiftItem) shift() (*domain.Shift, error) {
	start, err := time.Parse(time.RFC3339Nano, it.StartTime)
	if err != nil {
		return nil, fmt.Errorf("shift %s: bad start_time: %w", it.ID, err)
	}
	end, err := time.Parse(time.RFC3339Nano, it.EndTime)
	if err != nil {
		return nil, fmt.Errorf("shift %s: bad end_time: %w", it.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("shift %s: bad created_at: %w", it.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("shift %s: bad updated_at: %w", it.ID, err)
	}

	return &domain.Shift{
		ID:        it.ID,
		UserID:    it.UserID,
		Workplace: it.Workplace,
		PayRate:   it.PayRate,
		StartTime: start,
		EndTime:   end,
		Breaks:    domain.MinutesToBreaks(it.BreakMinutes),
		YearMonth: it.YearMonth,
		Day:       it.Day,
		Version:   it.Version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ShiftFilter narrows a shift listing. Zero fields are unset; all set
// fields must match at once. An empty IDs slice means "no id filter".
type ShiftFilter struct {
	Year  int
	Month time.Month
	Day   int
	Start time.Time
	End   time.Time
	IDs   []string
}

// IsZero reports whether the filter narrows anything at all.
func (f ShiftFilter) IsZero() bool {
	return f.Year == 0 && f.Start.IsZero() && f.End.IsZero() && len(f.IDs) == 0
}

// skPrefix maps the year/month/day parts onto a sort key prefix so that
// the date match happens inside the key condition, not as a post-filter.
func (f ShiftFilter) skPrefix() string {
	switch {
	case f.Year != 0 && f.Month != 0 && f.Day != 0:
		return fmt.Sprintf("%s%04d-%02d#%02d#", shiftSKPrefix, f.Year, f.Month, f.Day)
	case f.Year != 0 && f.Month != 0:
		return fmt.Sprintf("%s%04d-%02d#", shiftSKPrefix, f.Year, f.Month)
	case f.Year != 0:
		return fmt.Sprintf("%s%04d-", shiftSKPrefix, f.Year)
	default:
		return shiftSKPrefix
	}
}

func (f ShiftFilter) matches(s *domain.Shift) bool {
	if !f.Start.IsZero() && !s.EndTime.After(f.Start) {
		return false
	}
	if !f.End.IsZero() && !s.StartTime.Before(f.End) {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == s.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ListShifts returns the owner's shifts matching the filter, ordered by
// start time.
func (r *Repository) ListShifts(ctx context.Context, userID string, filter ShiftFilter) ([]*domain.Shift, error) {
	items, err := r.queryPartition(ctx, r.cfg.DynamoDB.ShiftsTable, userID, filter.skPrefix())
	if err != nil {
		return nil, err
	}

	shifts := make([]*domain.Shift, 0, len(items))
	for _, item := range items {
		var it shiftItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		s, err := it.shift()
		if err != nil {
			return nil, err
		}
		if filter.matches(s) {
			shifts = append(shifts, s)
		}
	}

	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].StartTime.Equal(shifts[j].StartTime) {
			return shifts[i].StartTime.Before(shifts[j].StartTime)
		}
		return shifts[i].ID < shifts[j].ID
	})

	return shifts, nil
}

// GetShiftByID looks a shift up inside the owner's partition. When an
// interrupted move left the same id in two buckets, the most recently
// written copy wins and the stale one is deleted best-effort.
func (r *Repository) GetShiftByID(ctx context.Context, userID, id string) (*domain.Shift, error) {
	matches, err := r.ListShifts(ctx, userID, ShiftFilter{IDs: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}

	winner := matches[0]
	for _, s := range matches[1:] {
		if s.UpdatedAt.After(winner.UpdatedAt) {
			winner = s
		}
	}

	for _, s := range matches {
		if s == winner {
			continue
		}
		_ = r.deleteStaleShiftItem(ctx, s)
	}

	return winner, nil
}

// InsertShift persists a new shift under a server-assigned identifier.
// Any caller-supplied id is discarded.
func (r *Repository) InsertShift(ctx context.Context, s *domain.Shift) error {
	s.ID = uuid.NewString()
	s.Version = 1
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.DerivePartition()

	return r.putShift(ctx, s, condKeyAbsent, nil)
}

// UpdateShift replaces the stored shift, guarded by the version tag read
// with current. When the update moves the shift to a different
// YearMonth/Day bucket the document is inserted under the new key and the
// old copy removed; the two steps are not atomic, so an interruption can
// leave a transient duplicate that reads resolve (see GetShiftByID).
func (r *Repository) UpdateShift(ctx context.Context, current, updated *domain.Shift) error {
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.Version = current.Version + 1
	updated.UpdatedAt = time.Now().UTC()
	updated.DerivePartition()

	if updated.SamePartition(current) {
		return r.putShift(ctx, updated, condVersionMatch, versionValue(current.Version))
	}

	if err := r.putShift(ctx, updated, condKeyAbsent, nil); err != nil {
		return err
	}

	ctx2, cancel := r.queryContext(ctx)
	defer cancel()
	_, err := r.client.DeleteItem(ctx2, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.ShiftsTable),
		Key:                       key(userPK(current.UserID), shiftSK(current.YearMonth, current.Day, current.ID)),
		ConditionExpression:       aws.String(condVersionMatch),
		ExpressionAttributeValues: versionValue(current.Version),
	})
	if err != nil {
		if mapped := storeError(err); !errors.Is(mapped, domain.ErrConflict) {
			_ = r.deleteShiftItem(ctx, updated)
			return mapped
		}
		// the condition failed either because the old copy changed
		// underneath us or because a concurrent read already repaired it
		// away after seeing the new copy; only the former is a conflict
		exists, lookErr := r.shiftExists(ctx, current)
		if lookErr != nil {
			return lookErr
		}
		if !exists {
			return nil
		}
		_ = r.deleteShiftItem(ctx, updated)
		return domain.ErrConflict
	}

	return nil
}

// DeleteShift removes one shift by id; missing shifts are reported as
// not found.
func (r *Repository) DeleteShift(ctx context.Context, userID, id string) error {
	s, err := r.GetShiftByID(ctx, userID, id)
	if err != nil {
		return err
	}
	return r.deleteShiftItem(ctx, s)
}

// DeleteShiftsByFilter removes every shift matching the filter and
// returns how many went away. No match is reported as not found.
func (r *Repository) DeleteShiftsByFilter(ctx context.Context, userID string, filter ShiftFilter) (int, error) {
	shifts, err := r.ListShifts(ctx, userID, filter)
	if err != nil {
		return 0, err
	}
	if len(shifts) == 0 {
		return 0, domain.ErrNotFound
	}

	requests := make([]types.WriteRequest, 0, len(shifts))
	for _, s := range shifts {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: key(userPK(s.UserID), shiftSK(s.YearMonth, s.Day, s.ID)),
			},
		})
	}

	if err := r.batchWrite(ctx, r.cfg.DynamoDB.ShiftsTable, requests); err != nil {
		return 0, err
	}
	return len(shifts), nil
}

// BatchInsertShifts persists already-validated shifts in one batch and
// returns them ordered by start time. Identifiers are assigned here,
// server-side.
func (r *Repository) BatchInsertShifts(ctx context.Context, shifts []*domain.Shift) ([]*domain.Shift, error) {
	now := time.Now().UTC()
	requests := make([]types.WriteRequest, 0, len(shifts))
	for _, s := range shifts {
		s.ID = uuid.NewString()
		s.Version = 1
		s.CreatedAt = now
		s.UpdatedAt = now
		s.DerivePartition()

		item, err := attributevalue.MarshalMap(newShiftItem(s))
		if err != nil {
			return nil, err
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	if err := r.batchWrite(ctx, r.cfg.DynamoDB.ShiftsTable, requests); err != nil {
		return nil, err
	}

	created := make([]*domain.Shift, len(shifts))
	copy(created, shifts)
	sort.Slice(created, func(i, j int) bool {
		if !created[i].StartTime.Equal(created[j].StartTime) {
			return created[i].StartTime.Before(created[j].StartTime)
		}
		return created[i].ID < created[j].ID
	})

	return created, nil
}

func (r *Repository) putShift(ctx context.Context, s *domain.Shift, condition string, values map[string]types.AttributeValue) error {
	item, err := attributevalue.MarshalMap(newShiftItem(s))
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.ShiftsTable),
		Item:                      item,
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	return storeError(err)
}

// deleteShiftItem removes the exact key the shift lives under.
func (r *Repository) deleteShiftItem(ctx context.Context, s *domain.Shift) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.cfg.DynamoDB.ShiftsTable),
		Key:       key(userPK(s.UserID), shiftSK(s.YearMonth, s.Day, s.ID)),
	})
	return storeError(err)
}

// deleteStaleShiftItem removes a superseded copy, guarded by the version
// that was read so repair can never remove a write it did not see.
func (r *Repository) deleteStaleShiftItem(ctx context.Context, s *domain.Shift) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.ShiftsTable),
		Key:                       key(userPK(s.UserID), shiftSK(s.YearMonth, s.Day, s.ID)),
		ConditionExpression:       aws.String(condVersionMatch),
		ExpressionAttributeValues: versionValue(s.Version),
	})
	return storeError(err)
}

// shiftExists reports whether anything lives under the shift's exact key.
func (r *Repository) shiftExists(ctx context.Context, s *domain.Shift) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.cfg.DynamoDB.ShiftsTable),
		Key:       key(userPK(s.UserID), shiftSK(s.YearMonth, s.Day, s.ID)),
	})
	if err != nil {
		return false, storeError(err)
	}
	return len(out.Item) > 0, nil
}
