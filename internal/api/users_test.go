package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

type fakeUsers struct {
	created []*models.User
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	user.ID = int64(len(f.created) + 1)
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.created {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user %d not found", id)
}

func TestCreateUserHandler(t *testing.T) {
	users := &fakeUsers{}
	h := &userHandlers{users: users}

	req := httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"username":"amira","email":"amira@example.com"}`))
	rec := httptest.NewRecorder()
	h.create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, users.created, 1)
	assert.Equal(t, models.RoleClient, users.created[0].Role)
	assert.Contains(t, rec.Body.String(), `"amira"`)
}

func TestCreateUserHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"email":"a@b.c"}`},
		{"missing email", `{"username":"amira"}`},
		{"malformed body", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &userHandlers{users: &fakeUsers{}}
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.create(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
