package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointError_WrapsCause(t *testing.T) {
	err := fmt.Errorf("detect classes: %w", &EndpointError{
		EndpointID: "ep-1",
		URL:        "https://example.org/sparql",
		Operation:  "classes",
		Err:        context.DeadlineExceeded,
	})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	ee, ok := AsEndpointError(err)
	require.True(t, ok)
	assert.Equal(t, "classes", ee.Operation)
	assert.Contains(t, err.Error(), "https://example.org/sparql")
}

func TestAsEndpointError_NotPresent(t *testing.T) {
	_, ok := AsEndpointError(ErrNotFound)
	assert.False(t, ok)
}
