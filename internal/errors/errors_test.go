package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/upsimu/internal/errors"
)

func TestAppError_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *errors.AppError
		code   string
		status int
	}{
		{"not found", errors.NewNotFoundError("scenario", "volvo"), errors.ErrCodeNotFound, 404},
		{"validation", errors.NewValidationError("text", "cannot be empty"), errors.ErrCodeValidation, 400},
		{"bad request", errors.NewBadRequestError("bad"), errors.ErrCodeBadRequest, 400},
		{"conflict", errors.NewConflictError("attempt", "already complete"), errors.ErrCodeConflict, 409},
		{"config", errors.NewConfigError("volvo.yaml", fmt.Errorf("boom")), errors.ErrCodeConfiguration, 500},
		{"internal", errors.NewInternalError(fmt.Errorf("boom")), errors.ErrCodeInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestAs_WrappedError(t *testing.T) {
	base := errors.NewNotFoundError("attempt", "abc")
	wrapped := fmt.Errorf("loading: %w", base)

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	assert.True(t, errors.HasCode(wrapped, errors.ErrCodeNotFound))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrCodeNotFound))
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := errors.NewInternalError(inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "disk full")
}
