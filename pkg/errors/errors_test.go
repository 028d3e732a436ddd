package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesTypeAndStack(t *testing.T) {
	err := New(TypeValidation, "bad input")

	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "validation: bad input", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, TypeConnection, "failed to connect")

	assert.Equal(t, "connection: failed to connect: connection refused", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, TypeWrite, "ignored"))
}

func TestWithDetail(t *testing.T) {
	err := New(TypeAPIRequest, "unexpected status").
		WithDetail("status_code", 404).
		WithDetail("url", "https://api.example.com/games")

	assert.Equal(t, 404, err.Details["status_code"])
	assert.Equal(t, "https://api.example.com/games", err.Details["url"])
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := New(TypeAPIRequest, "unexpected status")
	outer := fmt.Errorf("fetch failed: %w", inner)

	assert.True(t, IsType(outer, TypeAPIRequest))
	assert.False(t, IsType(outer, TypeTransport))
	assert.False(t, IsType(stderrors.New("plain"), TypeAPIRequest))
}

func TestWrapKeepsOriginalStack(t *testing.T) {
	inner := New(TypeWrite, "rejected")
	outer := Wrap(inner, TypeWrite, "write failed")

	require.NotEmpty(t, outer.Stack)
	assert.Equal(t, inner.Stack[0], outer.Stack[0])
}
