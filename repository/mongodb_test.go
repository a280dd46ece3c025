package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/utils"
)

func TestExecuteDbOperationSuccess(t *testing.T) {
	utils.InitLogger()

	calls := 0
	result, err := ExecuteDbOperation(func() (interface{}, error) {
		calls++
		return "ok", nil
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestExecuteDbOperationNotFoundPassthrough(t *testing.T) {
	utils.InitLogger()

	calls := 0
	_, err := ExecuteDbOperation(func() (interface{}, error) {
		calls++
		return nil, ErrNotFound
	}, 3)
	// 记录不存在不重试、不包装
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, calls)

	var appErr *utils.AppError
	assert.False(t, errors.As(err, &appErr))
}

func TestExecuteDbOperationNonRetryable(t *testing.T) {
	utils.InitLogger()

	calls := 0
	_, err := ExecuteDbOperation(func() (interface{}, error) {
		calls++
		return nil, errors.New("duplicate key error")
	}, 3)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.StatusCode)
}

func TestExecuteDbOperationRetriesNetworkError(t *testing.T) {
	utils.InitLogger()

	calls := 0
	result, err := ExecuteDbOperation(func() (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return int64(7), nil
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result)
	assert.Equal(t, 2, calls)
}

func TestParseSort(t *testing.T) {
	assert.Nil(t, parseSort(""))
	assert.Equal(t, bson.D{{Key: "created", Value: 1}}, parseSort("created"))
	assert.Equal(t, bson.D{{Key: "created", Value: -1}}, parseSort("-created"))
}
