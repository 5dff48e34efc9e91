package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/config"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/domain"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/storetest"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.DynamoDB.ShiftsTable = "Shifts"
	cfg.DynamoDB.WorkInfosTable = "WorkInfos"
	cfg.DynamoDB.ShiftTemplatesTable = "ShiftTemplates"
	cfg.DynamoDB.QueryTimeout = 5
	return cfg
}

func newTestRepo() (*Repository, *storetest.FakeDynamoDB) {
	fake := storetest.NewFakeDynamoDB()
	return NewRepository(testConfig(), fake), fake
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, storeError(nil))

	condErr := &types.ConditionalCheckFailedException{Message: aws.String("boom")}
	assert.ErrorIs(t, storeError(condErr), domain.ErrConflict)

	assert.ErrorIs(t, storeError(context.DeadlineExceeded), domain.ErrStoreUnavailable)

	throttled := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
	assert.ErrorIs(t, storeError(throttled), domain.ErrStoreUnavailable)

	other := errors.New("something else")
	assert.Equal(t, other, storeError(other))
}

func TestQueryPartitionSurfacesTransportFailure(t *testing.T) {
	repo, fake := newTestRepo()
	fake.FailWith = &smithy.GenericAPIError{Code: "ServiceUnavailable", Message: "down"}

	_, err := repo.ListShifts(context.Background(), "user-1", ShiftFilter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
