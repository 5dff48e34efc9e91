// Package storetest provides an in-memory stand-in for the DynamoDB
// client, implementing the condition semantics the repository relies on:
// key-absence guards on insert and version-tag guards on replace and
// delete. Tests exercise the repository and handlers against it without a
// running DynamoDB.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type item = map[string]types.AttributeValue

// FakeDynamoDB is safe for concurrent use. Set FailWith to make every
// subsequent call fail, for transport-error paths.
type FakeDynamoDB struct {
	mu       sync.Mutex
	tables   map[string]map[string]item
	FailWith error
}

func NewFakeDynamoDB() *FakeDynamoDB {
	return &FakeDynamoDB{tables: make(map[string]map[string]item)}
}

// Len reports how many items a table holds.
func (f *FakeDynamoDB) Len(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func attrS(it item, name string) string {
	if v, ok := it[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func attrN(it item, name string) string {
	if v, ok := it[name].(*types.AttributeValueMemberN); ok {
		return v.Value
	}
	return ""
}

func compositeKey(it item) string {
	return attrS(it, "pk") + "\x00" + attrS(it, "sk")
}

func (f *FakeDynamoDB) table(name string) map[string]item {
	if f.tables[name] == nil {
		f.tables[name] = make(map[string]item)
	}
	return f.tables[name]
}

// checkCondition understands the two expressions the repository writes:
// attribute_not_exists key guards and "version = :expected" tag guards.
func checkCondition(cond *string, existing item, values item) error {
	if cond == nil {
		return nil
	}
	if strings.Contains(*cond, "attribute_not_exists") {
		if existing != nil {
			return &types.ConditionalCheckFailedException{Message: aws.String("key already exists")}
		}
		return nil
	}
	if strings.Contains(*cond, "version") {
		if existing == nil || attrN(existing, "version") != attrN(values, ":expected") {
			return &types.ConditionalCheckFailedException{Message: aws.String("version mismatch")}
		}
		return nil
	}
	return nil
}

func (f *FakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	tbl := f.table(aws.ToString(params.TableName))
	k := compositeKey(params.Item)
	if err := checkCondition(params.ConditionExpression, tbl[k], params.ExpressionAttributeValues); err != nil {
		return nil, err
	}

	tbl[k] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *FakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	tbl := f.table(aws.ToString(params.TableName))
	return &dynamodb.GetItemOutput{Item: tbl[compositeKey(params.Key)]}, nil
}

func (f *FakeDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	tbl := f.table(aws.ToString(params.TableName))
	k := compositeKey(params.Key)
	if err := checkCondition(params.ConditionExpression, tbl[k], params.ExpressionAttributeValues); err != nil {
		return nil, err
	}

	delete(tbl, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *FakeDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	pk := attrS(params.ExpressionAttributeValues, ":pk")
	prefix := attrS(params.ExpressionAttributeValues, ":prefix")

	var matches []item
	for _, it := range f.table(aws.ToString(params.TableName)) {
		if attrS(it, "pk") == pk && strings.HasPrefix(attrS(it, "sk"), prefix) {
			matches = append(matches, it)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return attrS(matches[i], "sk") < attrS(matches[j], "sk") })

	return &dynamodb.QueryOutput{Items: matches, Count: int32(len(matches))}, nil
}

func (f *FakeDynamoDB) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	for table, requests := range params.RequestItems {
		tbl := f.table(table)
		for _, req := range requests {
			switch {
			case req.PutRequest != nil:
				tbl[compositeKey(req.PutRequest.Item)] = req.PutRequest.Item
			case req.DeleteRequest != nil:
				delete(tbl, compositeKey(req.DeleteRequest.Key))
			}
		}
	}

	return &dynamodb.BatchWriteItemOutput{}, nil
}
