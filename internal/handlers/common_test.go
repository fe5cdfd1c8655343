package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alarm-clock-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("op", "bad"), http.StatusBadRequest},
		{apperr.NotFound("op", "gone"), http.StatusNotFound},
		{apperr.UnsupportedMedia("op", "nope"), http.StatusUnsupportedMediaType},
		{fmt.Errorf("wrapped: %w", apperr.NotFound("op", "gone")), http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}

func TestRespondServiceErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, errors.New("pq: password authentication failed"), "Failed to create alarm")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to create alarm"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	respondServiceError(rec, apperr.Validation("alarm.Create", "time required"), "Failed to create alarm")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"time required"}`, rec.Body.String())
}

func TestDecodeBodyAllowsEmptyBody(t *testing.T) {
	var v struct{ ID string }

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, decodeBody(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ID":"a1"}`))
	require.NoError(t, decodeBody(req, &v))
	assert.Equal(t, "a1", v.ID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, decodeBody(req, &v))
}
