package signin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/service/auth"
	"tender-backend/internal/storage"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) SignIn(ctx context.Context, login, password string) (string, *storage.User, error) {
	args := m.Called(ctx, login, password)
	u, _ := args.Get(1).(*storage.User)
	return args.String(0), u, args.Error(2)
}

func serve(a Authenticator, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	SignIn(slog.Default(), a).ServeHTTP(rr,
		httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(body)))
	return rr
}

func TestSignIn(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("SignIn", mock.Anything, "ivan", "secret1").Return("jwt-token", &storage.User{ID: 3, Username: "ivan"}, nil)

	rr := serve(a, `{"login": "ivan", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, int64(3), resp.User.ID)
}

func TestSignIn_WrongPassword(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("SignIn", mock.Anything, "ivan", "wrong").Return("", nil, fmt.Errorf("op: %w", auth.ErrInvalidCredentials))

	assert.Equal(t, http.StatusUnauthorized, serve(a, `{"login": "ivan", "password": "wrong"}`).Code)
}

func TestSignIn_MissingFields(t *testing.T) {
	a := new(MockAuthenticator)

	assert.Equal(t, http.StatusBadRequest, serve(a, `{"login": "ivan"}`).Code)
	a.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}
