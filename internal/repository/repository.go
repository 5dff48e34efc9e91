package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/config"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses,
// narrowed so tests can substitute an in-memory fake.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type Repository struct {
	cfg    *config.Config
	client DynamoDBAPI
}

func NewRepository(cfg *config.Config, client DynamoDBAPI) *Repository {
	return &Repository{
		cfg:    cfg,
		client: client,
	}
}

// Condition expressions shared across the entity files. Inserts require
// the key slot to be free; replacements require the stored version tag to
// match the one read.
const (
	condKeyAbsent    = "attribute_not_exists(pk) AND attribute_not_exists(sk)"
	condVersionMatch = "version = :expected"
)

const batchWriteLimit = 25

func userPK(userID string) string {
	return "USER#" + userID
}

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}

func versionValue(expected int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expected)},
	}
}

// queryContext bounds a storage call with the configured per-query
// timeout while keeping the request's cancellation.
func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.DynamoDB.QueryTimeout)*time.Second)
}

// queryPartition pages through one owner partition, restricted to a sort
// key prefix, and returns the raw items.
func (r *Repository) queryPartition(ctx context.Context, table, userID, skPrefix string) ([]map[string]types.AttributeValue, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	items := make([]map[string]types.AttributeValue, 0)
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: userPK(userID)},
				":prefix": &types.AttributeValueMemberS{Value: skPrefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, storeError(err)
		}

		items = append(items, out.Items...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return items, nil
}

// batchWrite flushes put/delete requests in chunks, retrying unprocessed
// entries a few times before giving up.
func (r *Repository) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	for start := 0; start < len(requests); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(requests))
		pending := requests[start:end]

		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == 3 {
				return fmt.Errorf("%w: batch write left %d unprocessed entries", domain.ErrStoreUnavailable, len(pending))
			}

			out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{table: pending},
			})
			if err != nil {
				return storeError(err)
			}
			pending = out.UnprocessedItems[table]
		}
	}

	return nil
}

// storeError maps SDK failures onto the domain taxonomy: conditional
// check failures become conflicts, timeouts and throttling become
// transient store failures, anything else passes through for the generic
// server error path.
func storeError(err error) error {
	if err == nil {
		return nil
	}

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return domain.ErrConflict
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException",
			"ThrottlingException",
			"RequestLimitExceeded",
			"InternalServerError",
			"ServiceUnavailable":
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}

	return err
}
