package delete

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authmw "tender-backend/internal/middleware/auth"
	"tender-backend/internal/service/users"
	"tender-backend/internal/storage"
)

type MockUserDeleter struct {
	mock.Mock
}

func (m *MockUserDeleter) Delete(ctx context.Context, actor storage.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func TestDeleteUser(t *testing.T) {
	admin := storage.Actor{ID: 1, Role: storage.RoleAdmin}
	boss := storage.Actor{ID: 3, Role: storage.RoleBoss}

	deleter := new(MockUserDeleter)
	deleter.On("Delete", mock.Anything, admin, int64(5)).Return(nil)
	deleter.On("Delete", mock.Anything, boss, int64(5)).Return(fmt.Errorf("op: %w", users.ErrForbidden))

	r := chi.NewRouter()
	r.Delete("/api/users/{id}", DeleteUser(slog.Default(), deleter))

	for actor, code := range map[storage.Actor]int{admin: http.StatusOK, boss: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodDelete, "/api/users/5", nil)
		req = req.WithContext(authmw.WithActor(req.Context(), actor))

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, code, rr.Code, actor.Role)
	}
}
