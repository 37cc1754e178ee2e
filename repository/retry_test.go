package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	t.Run("retries serialization failures", func(t *testing.T) {
		calls := 0
		err := policy.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return &pq.Error{Code: codeSerializationFailure}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := policy.Do(context.Background(), func(context.Context) error {
			calls++
			return &pq.Error{Code: codeDeadlockDetected}
		})
		assert.Equal(t, codeDeadlockDetected, pqCode(err))
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := policy.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}
		err := slow.Do(ctx, func(context.Context) error {
			return &pq.Error{Code: codeSerializationFailure}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(&pq.Error{Code: codeUniqueViolation}), ErrDuplicateRecord)
	assert.ErrorIs(t, translate(&pq.Error{Code: codeForeignKeyViolation}), ErrInvalidReference)
	assert.ErrorIs(t, translate(&pq.Error{Code: codeCheckViolation, Constraint: inventoryConstraint}), ErrInventoryExhausted)
	other := &pq.Error{Code: codeCheckViolation, Constraint: "books_daily_fee_check"}
	assert.Equal(t, other, translate(other))
	assert.NoError(t, translate(nil))
}
