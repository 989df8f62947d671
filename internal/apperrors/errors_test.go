package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	status, msg := StatusOf(ErrMissingTableID)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing tableId", msg)

	status, msg = StatusOf(fmt.Errorf("decode body: %w", ErrInvalidJSON))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid JSON", msg)

	status, msg = StatusOf(errors.New("redis: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal error", msg)

	assert.ErrorIs(t, fmt.Errorf("wrap: %w", ErrNotFound), ErrNotFound)
	assert.Equal(t, "Method not allowed", ErrMethodNotAllowed.Error())
}
