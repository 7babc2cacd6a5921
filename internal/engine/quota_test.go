package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Check("run-1"), "step %d should be allowed", i+1)
		q.Consume()
	}

	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.MaxSteps())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check("run-1"))
		q.Consume()
	}

	err := q.Check("run-1")
	require.Error(t, err)

	var stepsErr *StepsExceededError
	require.ErrorAs(t, err, &stepsErr)
	assert.Equal(t, "run-1", stepsErr.RunID)
	assert.Equal(t, 5, stepsErr.Steps)
	assert.Equal(t, 5, stepsErr.Limit)

	// Check does not consume
	assert.Equal(t, 5, q.Current())
}

func TestStepsExceededError_Error(t *testing.T) {
	err := &StepsExceededError{RunID: "run-abc", Steps: 1000, Limit: 1000}

	msg := err.Error()
	assert.Contains(t, msg, "run-abc")
	assert.Contains(t, msg, "1000")

	anon := &StepsExceededError{Steps: 3, Limit: 3}
	assert.NotContains(t, anon.Error(), "run ")
}

func TestIsStepsExceededError(t *testing.T) {
	stepsErr := &StepsExceededError{RunID: "run-1", Steps: 10, Limit: 5}

	assert.True(t, IsStepsExceededError(stepsErr))
	assert.True(t, IsStepsExceededError(fmt.Errorf("wrapped: %w", stepsErr)))
	assert.False(t, IsStepsExceededError(fmt.Errorf("other")))
	assert.False(t, IsStepsExceededError(nil))
}
