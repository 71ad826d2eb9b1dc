package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NotFound("order 1 not found"), http.StatusNotFound},
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"invalid state", apperrors.InvalidState("order is confirmed"), http.StatusConflict},
		{"invalid transition", apperrors.InvalidTransition("no such transition"), http.StatusConflict},
		{"forbidden", apperrors.Forbidden("not yours"), http.StatusForbidden},
		{"internal", apperrors.Internal("boom", errors.New("cause")), http.StatusInternalServerError},
		{"plain error", errors.New("untyped"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorUnknownEnumIsBadRequest(t *testing.T) {
	_, err := models.ParseOrderStatus("NO_SUCH_STATUS")
	require.Error(t, err)

	rec := httptest.NewRecorder()
	writeError(rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_SUCH_STATUS")

	_, err = models.ParseRestaurantStatus("ON_FIRE")
	rec = httptest.NewRecorder()
	writeError(rec, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))

	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestRequireCaller(t *testing.T) {
	var got int64
	handler := requireCaller(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = callerID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/count", nil)
	req.Header.Set("X-User-ID", "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), got)
}

func TestRequireCallerRejectsBadHeader(t *testing.T) {
	handler := requireCaller(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	for _, raw := range []string{"", "abc", "-1", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/orders/count", nil)
		if raw != "" {
			req.Header.Set("X-User-ID", raw)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "header %q", raw)
	}
}
