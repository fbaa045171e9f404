package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesOnKind(t *testing.T) {
	wrapped := ErrGroupNotFound.WithMessage("group %d not found", 42)

	assert.True(t, errors.Is(wrapped, ErrGroupNotFound))
	assert.False(t, errors.Is(wrapped, ErrNotMember))
	assert.Equal(t, "group 42 not found", wrapped.Error())
}

func TestWithMessagePreservesKind(t *testing.T) {
	wrapped := ErrPersistence.WithMessage("save group %d: %s", 7, "connection refused")

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, KindPersistence, e.Kind)
	// The sentinel itself must stay untouched.
	assert.Equal(t, "failed to persist group state", ErrPersistence.Message)
}

func TestErrorsIsThroughFmtWrap(t *testing.T) {
	wrapped := fmt.Errorf("call number: %w", ErrGameNotStarted)
	assert.True(t, errors.Is(wrapped, ErrGameNotStarted))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, KindGameNotStarted, e.Kind)
}

func TestErrorMessageFallsBackToKind(t *testing.T) {
	e := &Error{Kind: KindInvalidValue}
	assert.Equal(t, "INVALID_VALUE", e.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotAuthorized, http.StatusForbidden},
		{ErrNotMember, http.StatusForbidden},
		{ErrGroupNotFound, http.StatusNotFound},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrGameNotStarted, http.StatusBadRequest},
		{ErrGameAlreadyStarted, http.StatusBadRequest},
		{ErrInvalidCard, http.StatusBadRequest},
		{ErrInvalidValue, http.StatusBadRequest},
		{ErrNoCards, http.StatusBadRequest},
		{ErrGroupFull, http.StatusBadRequest},
		{ErrAlreadyMember, http.StatusBadRequest},
		{ErrPersistence, http.StatusInternalServerError},
		{errors.New("something else"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrGroupNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), "error %v", tc.err)
	}
}
