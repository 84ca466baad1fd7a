package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tender-backend/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(ctx context.Context, u *storage.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*storage.User)
	return u, args.Error(1)
}

func (m *MockStorage) ListUsers(ctx context.Context) ([]storage.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]storage.User)
	return users, args.Error(1)
}

func (m *MockStorage) UpdateUser(ctx context.Context, id int64, patch storage.UserPatch, passwordHash string) error {
	return m.Called(ctx, id, patch, passwordHash).Error(0)
}

func (m *MockStorage) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	admin   = storage.Actor{ID: 1, Role: storage.RoleAdmin}
	manager = storage.Actor{ID: 2, Role: storage.RoleTenderManager}
)

func ptr[T any](v T) *T { return &v }

func TestCreate_AdminOnly(t *testing.T) {
	st := new(MockStorage)

	_, err := New(st).Create(context.Background(), manager, CreateUser{Username: "ivan", Email: "ivan@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrForbidden)
	st.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreate_HashesPassword(t *testing.T) {
	st := new(MockStorage)
	st.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *storage.User) bool {
		return u.Role == storage.RoleTenderManager &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
	})).Return(int64(7), nil)

	u, err := New(st).Create(context.Background(), admin, CreateUser{Username: " ivan ", Email: "ivan@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "ivan", u.Username)
	st.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateUser
	}{
		{name: "bad email", req: CreateUser{Username: "ivan", Email: "nope", Password: "secret1"}},
		{name: "short password", req: CreateUser{Username: "ivan", Email: "ivan@example.com", Password: "123"}},
		{name: "unknown role", req: CreateUser{Username: "ivan", Email: "ivan@example.com", Password: "secret1", Role: "root"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(new(MockStorage)).Create(context.Background(), admin, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdate_Self(t *testing.T) {
	st := new(MockStorage)
	st.On("UpdateUser", mock.Anything, int64(2), mock.Anything, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass")) == nil
	})).Return(nil)
	st.On("GetUser", mock.Anything, int64(2)).Return(&storage.User{ID: 2, Phone: "+7"}, nil)

	u, err := New(st).Update(context.Background(), manager, 2, storage.UserPatch{Phone: ptr("+7"), Password: ptr("newpass")})
	require.NoError(t, err)
	assert.Equal(t, "+7", u.Phone)
	st.AssertExpectations(t)
}

func TestUpdate_Forbidden(t *testing.T) {
	st := new(MockStorage)
	svc := New(st)

	_, err := svc.Update(context.Background(), manager, 5, storage.UserPatch{Phone: ptr("+7")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), manager, 2, storage.UserPatch{Role: ptr(storage.RoleAdmin)})
	assert.ErrorIs(t, err, ErrForbidden)

	st.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_AdminChangesRole(t *testing.T) {
	st := new(MockStorage)
	patch := storage.UserPatch{Role: ptr(storage.RoleBoss)}
	st.On("UpdateUser", mock.Anything, int64(5), patch, "").Return(nil)
	st.On("GetUser", mock.Anything, int64(5)).Return(&storage.User{ID: 5, Role: storage.RoleBoss}, nil)

	u, err := New(st).Update(context.Background(), admin, 5, patch)
	require.NoError(t, err)
	assert.Equal(t, storage.RoleBoss, u.Role)
}

func TestUpdate_NotFound(t *testing.T) {
	st := new(MockStorage)
	st.On("UpdateUser", mock.Anything, int64(9), mock.Anything, "").Return(storage.ErrUserNotFound)

	_, err := New(st).Update(context.Background(), admin, 9, storage.UserPatch{About: ptr("x")})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestDelete(t *testing.T) {
	st := new(MockStorage)
	st.On("DeleteUser", mock.Anything, int64(5)).Return(nil)
	svc := New(st)

	assert.ErrorIs(t, svc.Delete(context.Background(), manager, 5), ErrForbidden)
	st.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)

	require.NoError(t, svc.Delete(context.Background(), admin, 5))
	st.AssertExpectations(t)
}
