package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tender-backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrValidation         = errors.New("validation failed")
)

type UserStorage interface {
	CreateUser(ctx context.Context, u *storage.User) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*storage.User, error)
	GetUser(ctx context.Context, id int64) (*storage.User, error)
}

type Service struct {
	users    UserStorage
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	now      func() time.Time
}

func New(users UserStorage, secret string, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
		validate: validator.New(),
		now:      time.Now,
	}
}

type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"max=50"`
	About    string `json:"about" validate:"max=1000"`
}

type claims struct {
	Role storage.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignUp регистрирует нового пользователя, роль всегда tender_manager.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*storage.User, error) {
	const op = "service.auth.SignUp"

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := &storage.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		About:        req.About,
		Role:         storage.RoleTenderManager,
		PasswordHash: hash,
	}

	id, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.ID = id

	return u, nil
}

// SignIn checks the password and issues a token.
func (s *Service) SignIn(ctx context.Context, login, password string) (string, *storage.User, error) {
	const op = "service.auth.SignIn"

	u, err := s.users.GetUserByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.Issue(u)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, u, nil
}

func (s *Service) Issue(u *storage.User) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	return token.SignedString(s.secret)
}

// ParseToken validates the token and returns the acting user it was issued to.
func (s *Service) ParseToken(token string) (storage.Actor, error) {
	var c claims

	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return storage.Actor{}, ErrTokenExpired
		}
		return storage.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return storage.Actor{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || !c.Role.Valid() {
		return storage.Actor{}, ErrInvalidToken
	}

	return storage.Actor{ID: id, Role: c.Role}, nil
}

// Authenticate checks the token and loads its user. The role comes from the
// stored user, so a demoted or deleted user loses access before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (storage.Actor, error) {
	const op = "service.auth.Authenticate"

	actor, err := s.ParseToken(token)
	if err != nil {
		return storage.Actor{}, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.users.GetUser(ctx, actor.ID)
	if errors.Is(err, storage.ErrUserNotFound) {
		return storage.Actor{}, fmt.Errorf("%s: %w: user %d no longer exists", op, ErrInvalidToken, actor.ID)
	}
	if err != nil {
		return storage.Actor{}, fmt.Errorf("%s: %w", op, err)
	}

	return storage.Actor{ID: u.ID, Role: u.Role}, nil
}
