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

// shiftTemplateItem keys templates by name, which makes the per-owner
// name uniqueness a property of the key itself.
type shiftTemplateItem struct {
	PK           string    `dynamodbav:"pk"`
	SK           string    `dynamodbav:"sk"`
	ID           string    `dynamodbav:"id"`
	UserID       string    `dynamodbav:"user_id"`
	Name         string    `dynamodbav:"name"`
	Workplace    string    `dynamodbav:"workplace"`
	PayRate      float64   `dynamodbav:"pay_rate"`
	StartTime    string    `dynamodbav:"start_time"`
	EndTime      string    `dynamodbav:"end_time"`
	BreakMinutes []float64 `dynamodbav:"breaks"`
	Version      int64     `dynamodbav:"version"`
	CreatedAt    string    `dynamodbav:"created_at"`
	UpdatedAt    string    `dynamodbav:"updated_at"`
}

const shiftTemplateSKPrefix = "TEMPLATE#"

func shiftTemplateSK(name string) string {
	return shiftTemplateSKPrefix + name
}

func newShiftTemplateItem(t *domain.ShiftTemplate) shiftTemplateItem {
	return shiftTemplateItem{
		PK:           userPK(t.UserID),
		SK:           shiftTemplateSK(t.Name),
		ID:           t.ID,
		UserID:       t.UserID,
		Name:         t.Name,
		Workplace:    t.Workplace,
		PayRate:      t.PayRate,
		StartTime:    t.StartTime.Format(time.RFC3339Nano),
		EndTime:      t.EndTime.Format(time.RFC3339Nano),
		BreakMinutes: domain.BreaksToMinutes(t.Breaks),
		Version:      t.Version,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (it shiftTemplateItem) shiftTemplate() (*domain.ShiftTemplate, error) {
	start, err := time.Parse(time.RFC3339Nano, it.StartTime)
	if err != nil {
		return nil, fmt.Errorf("shift template %s: bad start_time: %w", it.ID, err)
	}
	end, err := time.Parse(time.RFC3339Nano, it.EndTime)
	if err != nil {
		return nil, fmt.Errorf("shift template %s: bad end_time: %w", it.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("shift template %s: bad created_at: %w", it.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("shift template %s: bad updated_at: %w", it.ID, err)
	}

	return &domain.ShiftTemplate{
		ID:        it.ID,
		UserID:    it.UserID,
		Name:      it.Name,
		Workplace: it.Workplace,
		PayRate:   it.PayRate,
		StartTime: start,
		EndTime:   end,
		Breaks:    domain.MinutesToBreaks(it.BreakMinutes),
		Version:   it.Version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ListShiftTemplates returns the owner's templates ordered by name.
func (r *Repository) ListShiftTemplates(ctx context.Context, userID string) ([]*domain.ShiftTemplate, error) {
	items, err := r.queryPartition(ctx, r.cfg.DynamoDB.ShiftTemplatesTable, userID, shiftTemplateSKPrefix)
	if err != nil {
		return nil, err
	}

	templates := make([]*domain.ShiftTemplate, 0, len(items))
	for _, item := range items {
		var it shiftTemplateItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		t, err := it.shiftTemplate()
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })

	return templates, nil
}

// GetShiftTemplateByName is a point lookup on the structural key.
func (r *Repository) GetShiftTemplateByName(ctx context.Context, userID, name string) (*domain.ShiftTemplate, error) {
	ctx2, cancel := r.queryContext(ctx)
	defer cancel()

	out, err := r.client.GetItem(ctx2, &dynamodb.GetItemInput{
		TableName: aws.String(r.cfg.DynamoDB.ShiftTemplatesTable),
		Key:       key(userPK(userID), shiftTemplateSK(name)),
	})
	if err != nil {
		return nil, storeError(err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}

	var it shiftTemplateItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.shiftTemplate()
}

// GetShiftTemplateByID scans the owner partition for the id. As with
// shifts, an interrupted rename can briefly leave the id under two names;
// the most recent write wins and the stale copy goes away.
func (r *Repository) GetShiftTemplateByID(ctx context.Context, userID, id string) (*domain.ShiftTemplate, error) {
	templates, err := r.ListShiftTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}

	var winner *domain.ShiftTemplate
	var stale []*domain.ShiftTemplate
	for _, t := range templates {
		if t.ID != id {
			continue
		}
		if winner == nil || t.UpdatedAt.After(winner.UpdatedAt) {
			if winner != nil {
				stale = append(stale, winner)
			}
			winner = t
		} else {
			stale = append(stale, t)
		}
	}
	if winner == nil {
		return nil, domain.ErrNotFound
	}

	for _, t := range stale {
		_ = r.deleteStaleShiftTemplateItem(ctx, t)
	}

	return winner, nil
}

// UpsertShiftTemplate inserts a template under its name or, when the name
// is already taken, overwrites every mutable field in place. The created
// flag reports which happened.
func (r *Repository) UpsertShiftTemplate(ctx context.Context, t *domain.ShiftTemplate) (*domain.ShiftTemplate, bool, error) {
	existing, err := r.GetShiftTemplateByName(ctx, t.UserID, t.Name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		t.ID = uuid.NewString()
		t.Version = 1
		now := time.Now().UTC()
		t.CreatedAt = now
		t.UpdatedAt = now

		if err := r.putShiftTemplate(ctx, t, condKeyAbsent, nil); err != nil {
			return nil, false, err
		}
		return t, true, nil
	case err != nil:
		return nil, false, err
	}

	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	t.Version = existing.Version + 1
	t.UpdatedAt = time.Now().UTC()

	if err := r.putShiftTemplate(ctx, t, condVersionMatch, versionValue(existing.Version)); err != nil {
		return nil, false, err
	}
	return t, false, nil
}

// UpdateShiftTemplate replaces the template identified by current,
// guarded by its version tag. A rename moves the document to the new name
// key; the insert-then-delete pair is not atomic (same caveat as shifts).
func (r *Repository) UpdateShiftTemplate(ctx context.Context, current, updated *domain.ShiftTemplate) error {
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.Version = current.Version + 1
	updated.UpdatedAt = time.Now().UTC()

	if updated.Name == current.Name {
		return r.putShiftTemplate(ctx, updated, condVersionMatch, versionValue(current.Version))
	}

	// rename: the new name key must be free, so the put doubles as the
	// uniqueness check
	if err := r.putShiftTemplate(ctx, updated, condKeyAbsent, nil); err != nil {
		return err
	}

	ctx2, cancel := r.queryContext(ctx)
	defer cancel()
	_, err := r.client.DeleteItem(ctx2, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.ShiftTemplatesTable),
		Key:                       key(userPK(current.UserID), shiftTemplateSK(current.Name)),
		ConditionExpression:       aws.String(condVersionMatch),
		ExpressionAttributeValues: versionValue(current.Version),
	})
	if err != nil {
		if mapped := storeError(err); !errors.Is(mapped, domain.ErrConflict) {
			_ = r.deleteShiftTemplateItem(ctx, updated)
			return mapped
		}
		// a concurrent read may have repaired the old name away after
		// seeing the renamed copy; that is a completed move, not a race
		exists, lookErr := r.shiftTemplateExists(ctx, current)
		if lookErr != nil {
			return lookErr
		}
		if !exists {
			return nil
		}
		_ = r.deleteShiftTemplateItem(ctx, updated)
		return domain.ErrConflict
	}

	return nil
}

// DeleteShiftTemplate removes one template by id.
func (r *Repository) DeleteShiftTemplate(ctx context.Context, userID, id string) error {
	t, err := r.GetShiftTemplateByID(ctx, userID, id)
	if err != nil {
		return err
	}
	return r.deleteShiftTemplateItem(ctx, t)
}

func (r *Repository) putShiftTemplate(ctx context.Context, t *domain.ShiftTemplate, condition string, values map[string]types.AttributeValue) error {
	item, err := attributevalue.MarshalMap(newShiftTemplateItem(t))
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.ShiftTemplatesTable),
		Item:                      item,
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	return storeError(err)
}

func (r *Repository) deleteShiftTemplateItem(ctx context.Context, t *domain.ShiftTemplate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.cfg.DynamoDB.ShiftTemplatesTable),
		Key:       key(userPK(t.UserID), shiftTemplateSK(t.Name)),
	})
	return storeError(err)
}

// deleteStaleShiftTemplateItem removes a superseded copy, guarded by the
// version that was read so repair can never remove a write it did not see.
func (r *Repository) deleteStaleShiftTemplateItem(ctx context.Context, t *domain.ShiftTemplate) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.ShiftTemplatesTable),
		Key:                       key(userPK(t.UserID), shiftTemplateSK(t.Name)),
		ConditionExpression:       aws.String(condVersionMatch),
		ExpressionAttributeValues: versionValue(t.Version),
	})
	return storeError(err)
}

// shiftTemplateExists reports whether anything lives under the template's
// exact name key.
func (r *Repository) shiftTemplateExists(ctx context.Context, t *domain.ShiftTemplate) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.cfg.DynamoDB.ShiftTemplatesTable),
		Key:       key(userPK(t.UserID), shiftTemplateSK(t.Name)),
	})
	if err != nil {
		return false, storeError(err)
	}
	return len(out.Item) > 0, nil
}
