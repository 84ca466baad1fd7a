package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tender-backend/internal/service/auth"
	"tender-backend/internal/storage"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

type Storage interface {
	CreateUser(ctx context.Context, u *storage.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*storage.User, error)
	ListUsers(ctx context.Context) ([]storage.User, error)
	UpdateUser(ctx context.Context, id int64, patch storage.UserPatch, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

type Service struct {
	storage  Storage
	validate *validator.Validate
}

func New(s Storage) *Service {
	return &Service{storage: s, validate: validator.New()}
}

type CreateUser struct {
	Username string           `json:"username" validate:"required,min=3,max=100"`
	Email    string           `json:"email" validate:"required,email,max=255"`
	Password string           `json:"password" validate:"required,min=6,max=72"`
	Phone    string           `json:"phone" validate:"max=50"`
	About    string           `json:"about" validate:"max=1000"`
	Role     storage.UserRole `json:"role"`
}

type patchRules struct {
	Username *string `validate:"omitempty,min=3,max=100"`
	Email    *string `validate:"omitempty,email,max=255"`
	Phone    *string `validate:"omitempty,max=50"`
	About    *string `validate:"omitempty,max=1000"`
	Password *string `validate:"omitempty,min=6,max=72"`
}

func (s *Service) List(ctx context.Context) ([]storage.User, error) {
	const op = "service.users.List"

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*storage.User, error) {
	const op = "service.users.Get"

	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Create заводит пользователя от имени администратора, роль по умолчанию tender_manager.
func (s *Service) Create(ctx context.Context, actor storage.Actor, req CreateUser) (*storage.User, error) {
	const op = "service.users.Create"

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
	}
	if req.Role == "" {
		req.Role = storage.RoleTenderManager
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown role %q", op, ErrValidation, req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := &storage.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		About:        req.About,
		Role:         req.Role,
		PasswordHash: hash,
	}

	id, err := s.storage.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.ID = id

	return u, nil
}

// Update: админ правит кого угодно, остальные только себя и без смены роли.
func (s *Service) Update(ctx context.Context, actor storage.Actor, id int64, patch storage.UserPatch) (*storage.User, error) {
	const op = "service.users.Update"

	if !actor.IsAdmin() {
		if actor.ID != id || patch.Role != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
		}
	}

	if patch.Username != nil {
		v := strings.TrimSpace(*patch.Username)
		patch.Username = &v
	}
	if patch.Email != nil {
		v := strings.TrimSpace(*patch.Email)
		patch.Email = &v
	}

	rules := patchRules{
		Username: patch.Username,
		Email:    patch.Email,
		Phone:    patch.Phone,
		About:    patch.About,
		Password: patch.Password,
	}
	if err := s.validate.Struct(rules); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown role %q", op, ErrValidation, *patch.Role)
	}

	var hash string
	if patch.Password != nil {
		h, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		hash = h
	}

	if err := s.storage.UpdateUser(ctx, id, patch, hash); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor storage.Actor, id int64) error {
	const op = "service.users.Delete"

	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
