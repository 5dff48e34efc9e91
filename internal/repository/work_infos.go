package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

type workInfoItem struct {
	PK        string    `dynamodbav:"pk"`
	SK        string    `dynamodbav:"sk"`
	ID        string    `dynamodbav:"id"`
	UserID    string    `dynamodbav:"user_id"`
	Workplace string    `dynamodbav:"workplace"`
	PayRates  []float64 `dynamodbav:"pay_rates"`
	Version   int64     `dynamodbav:"version"`
	CreatedAt string    `dynamodbav:"created_at"`
	UpdatedAt string    `dynamodbav:"updated_at"`
}

const workInfoSKPrefix = "WORKINFO#"

func workInfoSK(id string) string {
	return workInfoSKPrefix + id
}

func newWorkInfoItem(w *domain.WorkInfo) workInfoItem {
	return workInfoItem{
		PK:        userPK(w.UserID),
		SK:        workInfoSK(w.ID),
		ID:        w.ID,
		UserID:    w.UserID,
		Workplace: w.Workplace,
		PayRates:  w.PayRates,
		Version:   w.Version,
		CreatedAt: w.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (it workInfoItem) workInfo() (*domain.WorkInfo, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("work info %s: bad created_at: %w", it.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("work info %s: bad updated_at: %w", it.ID, err)
	}

	return &domain.WorkInfo{
		ID:        it.ID,
		UserID:    it.UserID,
		Workplace: it.Workplace,
		PayRates:  it.PayRates,
		Version:   it.Version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ListWorkInfos returns every workplace record in the owner's partition.
func (r *Repository) ListWorkInfos(ctx context.Context, userID string) ([]*domain.WorkInfo, error) {
	items, err := r.queryPartition(ctx, r.cfg.DynamoDB.WorkInfosTable, userID, workInfoSKPrefix)
	if err != nil {
		return nil, err
	}

	infos := make([]*domain.WorkInfo, 0, len(items))
	for _, item := range items {
		var it workInfoItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		w, err := it.workInfo()
		if err != nil {
			return nil, err
		}
		infos = append(infos, w)
	}

	return infos, nil
}

// GetWorkInfoByID is a point lookup; the deterministic id makes it a
// single-key read.
func (r *Repository) GetWorkInfoByID(ctx context.Context, userID, id string) (*domain.WorkInfo, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.cfg.DynamoDB.WorkInfosTable),
		Key:       key(userPK(userID), workInfoSK(id)),
	})
	if err != nil {
		return nil, storeError(err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}

	var it workInfoItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.workInfo()
}

// UpsertWorkInfo inserts the first record for a workplace or unions the
// incoming pay rates into the existing one. The created flag tells the
// caller which of the two happened; that distinction is part of the API
// contract.
func (r *Repository) UpsertWorkInfo(ctx context.Context, w *domain.WorkInfo) (*domain.WorkInfo, bool, error) {
	existing, err := r.GetWorkInfoByID(ctx, w.UserID, w.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		w.Version = 1
		now := time.Now().UTC()
		w.CreatedAt = now
		w.UpdatedAt = now

		err := r.putWorkInfo(ctx, w, condKeyAbsent, nil)
		if errors.Is(err, domain.ErrConflict) {
			// lost a creation race for the same workplace: fall back to
			// merging into whichever record won
			return r.UpsertWorkInfo(ctx, w)
		}
		if err != nil {
			return nil, false, err
		}
		return w, true, nil
	case err != nil:
		return nil, false, err
	}

	existing.MergePayRates(w.PayRates)
	expected := existing.Version
	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if err := r.putWorkInfo(ctx, existing, condVersionMatch, versionValue(expected)); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// DeleteWorkInfo removes the whole record. Deleting a record that is
// already gone succeeds: whole-record deletion is idempotent.
func (r *Repository) DeleteWorkInfo(ctx context.Context, userID, id string) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.cfg.DynamoDB.WorkInfosTable),
		Key:       key(userPK(userID), workInfoSK(id)),
	})
	return storeError(err)
}

// DeleteWorkInfoPayRate removes a single rate and keeps the record.
// Unlike whole-record deletion this is targeted: a missing record or a
// rate not in the set is not found.
func (r *Repository) DeleteWorkInfoPayRate(ctx context.Context, userID, id string, rate float64) (*domain.WorkInfo, error) {
	w, err := r.GetWorkInfoByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !w.RemovePayRate(rate) {
		return nil, domain.ErrNotFound
	}

	expected := w.Version
	w.Version++
	w.UpdatedAt = time.Now().UTC()

	if err := r.putWorkInfo(ctx, w, condVersionMatch, versionValue(expected)); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Repository) putWorkInfo(ctx context.Context, w *domain.WorkInfo, condition string, values map[string]types.AttributeValue) error {
	item, err := attributevalue.MarshalMap(newWorkInfoItem(w))
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.cfg.DynamoDB.WorkInfosTable),
		Item:                      item,
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	})
	return storeError(err)
}
