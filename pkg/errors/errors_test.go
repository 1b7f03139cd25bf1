package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("includes cause in message", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewUpstream("completion failed", cause)

		assert.Contains(t, err.Error(), "UPSTREAM")
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("predicates match their type only", func(t *testing.T) {
		cases := []struct {
			err       error
			predicate func(error) bool
		}{
			{NewValidation("bad input"), IsValidation},
			{NewNotFound("missing"), IsNotFound},
			{NewUpstream("down", nil), IsUpstream},
			{NewTimeout("slow", nil), IsTimeout},
			{NewInvariant("broken"), IsInvariant},
			{NewInternal("bug", nil), IsInternal},
		}
		for _, c := range cases {
			assert.True(t, c.predicate(c.err), "%v", c.err)
		}
		assert.False(t, IsValidation(NewNotFound("missing")))
		assert.False(t, IsUpstream(errors.New("plain")))
	})

	t.Run("predicates see through wrapping", func(t *testing.T) {
		err := fmt.Errorf("handling request: %w", NewTimeout("deadline exceeded", nil))
		assert.True(t, IsTimeout(err))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("preserves the original type", func(t *testing.T) {
		err := Wrap(NewValidation("bad input"), "normalizing request")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "normalizing request")
		assert.Contains(t, err.Error(), "bad input")
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		err := Wrap(errors.New("boom"), "saving")
		assert.True(t, IsInternal(err))
	})
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewUpstream("down", nil)))
	assert.True(t, IsRecoverable(NewTimeout("slow", nil)))
	assert.False(t, IsRecoverable(NewValidation("bad")))
	assert.False(t, IsRecoverable(NewInvariant("broken")))
	assert.False(t, IsRecoverable(NewInternal("bug", nil)))
	assert.False(t, IsRecoverable(errors.New("plain")))
}
