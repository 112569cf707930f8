package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("profile", "42"), http.StatusNotFound},
		{"invalid input", NewMissingField("email"), http.StatusBadRequest},
		{"conflict", NewConflict("profile", "email", "a@b.c"), http.StatusConflict},
		{"rate limited", NewTooManyRequests("slow down"), http.StatusTooManyRequests},
		{"internal", NewInternal("db down", errors.New("dial")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("loading: %w", NewNotFound("skill", "7")), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestAppError_UnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal("failed to load skills", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAs(t *testing.T) {
	notFound := NewNotFound("profile", "42")
	assert.Same(t, notFound, As(fmt.Errorf("wrap: %w", notFound)))

	plain := errors.New("boom")
	got := As(plain)
	assert.ErrorIs(t, got, ErrInternal)
	assert.ErrorIs(t, got, plain)
}

func TestToJSON_HidesCause(t *testing.T) {
	body := NewInternal("failed to load skills", errors.New("password=hunter2")).ToJSON()

	assert.Equal(t, "service error", body["error"])
	assert.Equal(t, "An internal service error occurred", body["message"])
	assert.Equal(t, "failed to load skills", body["details"])
	assert.NotContains(t, fmt.Sprint(body), "hunter2")

	body = NewAppError(ErrConflict, "conflict", "", nil).ToJSON()
	assert.NotContains(t, body, "details")
}
