package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/storage"
)

type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) CreateUser(ctx context.Context, u *storage.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStorage) GetUserByLogin(ctx context.Context, login string) (*storage.User, error) {
	args := m.Called(ctx, login)
	u, _ := args.Get(0).(*storage.User)
	return u, args.Error(1)
}

func (m *MockUserStorage) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*storage.User)
	return u, args.Error(1)
}

func TestSignUp(t *testing.T) {
	users := new(MockUserStorage)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *storage.User) bool {
		return u.Username == "ivanov" && u.Role == storage.RoleTenderManager && u.PasswordHash != "secret1"
	})).Return(int64(5), nil)

	u, err := New(users, "key", time.Hour).SignUp(context.Background(), SignUpRequest{
		Username: " ivanov ",
		Email:    "ivanov@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), u.ID)
	users.AssertExpectations(t)
}

func TestSignUp_Validation(t *testing.T) {
	users := new(MockUserStorage)

	_, err := New(users, "key", time.Hour).SignUp(context.Background(), SignUpRequest{
		Username: "iv",
		Email:    "not-an-email",
		Password: "1",
	})
	assert.ErrorIs(t, err, ErrValidation)
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSignIn_AndParseToken(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	users := new(MockUserStorage)
	users.On("GetUserByLogin", mock.Anything, "boss").Return(&storage.User{
		ID: 9, Username: "boss", Role: storage.RoleBoss, PasswordHash: hash,
	}, nil)

	svc := New(users, "key", time.Hour)

	token, u, err := svc.SignIn(context.Background(), "boss", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.ID)

	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, storage.Actor{ID: 9, Role: storage.RoleBoss}, actor)

	_, _, err = svc.SignIn(context.Background(), "boss", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_UnknownUser(t *testing.T) {
	users := new(MockUserStorage)
	users.On("GetUserByLogin", mock.Anything, "ghost").Return(nil, storage.ErrUserNotFound)

	_, _, err := New(users, "key", time.Hour).SignIn(context.Background(), "ghost", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken_Expired(t *testing.T) {
	svc := New(new(MockUserStorage), "key", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.Issue(&storage.User{ID: 1, Role: storage.RoleAdmin})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := New(new(MockUserStorage), "key", time.Hour).Issue(&storage.User{ID: 1, Role: storage.RoleAdmin})
	require.NoError(t, err)

	_, err = New(new(MockUserStorage), "other", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_RoleFromStoredUser(t *testing.T) {
	users := new(MockUserStorage)
	svc := New(users, "key", time.Hour)

	token, err := svc.Issue(&storage.User{ID: 7, Role: storage.RoleAdmin})
	require.NoError(t, err)

	// пользователя понизили после выдачи токена
	users.On("GetUser", mock.Anything, int64(7)).Return(&storage.User{ID: 7, Role: storage.RoleTenderManager}, nil)

	actor, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, storage.Actor{ID: 7, Role: storage.RoleTenderManager}, actor)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	users := new(MockUserStorage)
	svc := New(users, "key", time.Hour)

	token, err := svc.Issue(&storage.User{ID: 8, Role: storage.RoleAdmin})
	require.NoError(t, err)

	users.On("GetUser", mock.Anything, int64(8)).Return(nil, storage.ErrUserNotFound)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_StorageError(t *testing.T) {
	users := new(MockUserStorage)
	svc := New(users, "key", time.Hour)

	token, err := svc.Issue(&storage.User{ID: 9, Role: storage.RoleBoss})
	require.NoError(t, err)

	users.On("GetUser", mock.Anything, int64(9)).Return(nil, errors.New("connection refused"))

	_, err = svc.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_BadTokenSkipsLookup(t *testing.T) {
	users := new(MockUserStorage)

	_, err := New(users, "key", time.Hour).Authenticate(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}
