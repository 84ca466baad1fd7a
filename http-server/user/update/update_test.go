package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authmw "tender-backend/internal/middleware/auth"
	"tender-backend/internal/service/users"
	"tender-backend/internal/storage"
)

type MockUserUpdater struct {
	mock.Mock
}

func (m *MockUserUpdater) Update(ctx context.Context, actor storage.Actor, id int64, patch storage.UserPatch) (*storage.User, error) {
	args := m.Called(ctx, actor, id, patch)
	u, _ := args.Get(0).(*storage.User)
	return u, args.Error(1)
}

var manager = storage.Actor{ID: 2, Role: storage.RoleTenderManager}

func serve(updater UserUpdater, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Patch("/api/users/{id}", UpdateUser(slog.Default(), updater))

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req = req.WithContext(authmw.WithActor(req.Context(), manager))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUpdateUser(t *testing.T) {
	updater := new(MockUserUpdater)
	updater.On("Update", mock.Anything, manager, int64(2), mock.MatchedBy(func(p storage.UserPatch) bool {
		return p.About != nil && *p.About == "тендеры" && p.Role == nil
	})).Return(&storage.User{ID: 2, About: "тендеры"}, nil)
	updater.On("Update", mock.Anything, manager, int64(3), mock.Anything).Return(nil, fmt.Errorf("op: %w", users.ErrForbidden))

	assert.Equal(t, http.StatusOK, serve(updater, "/api/users/2", `{"about": "тендеры"}`).Code)
	assert.Equal(t, http.StatusForbidden, serve(updater, "/api/users/3", `{"about": "x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(updater, "/api/users/2", `[`).Code)
}
