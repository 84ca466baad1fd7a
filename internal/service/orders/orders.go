package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tender-backend/internal/storage"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrValidation        = errors.New("validation failed")
)

type Storage interface {
	CreateOrder(ctx context.Context, o *storage.Order) (int64, error)
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
	ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error)
	UpdateOrder(ctx context.Context, o *storage.Order) error
	DeleteOrder(ctx context.Context, id int64) error
	GetCustomer(ctx context.Context, id int64) (*storage.Customer, error)
}

type Service struct {
	storage  Storage
	validate *validator.Validate
}

func New(s Storage) *Service {
	return &Service{storage: s, validate: validator.New()}
}

type CreateOrder struct {
	ContractNumber     string             `json:"contractNumber" validate:"required,min=2,max=200"`
	ComplectName       string             `json:"complectName" validate:"required,min=2,max=200"`
	CustomerID         int64              `json:"customerId" validate:"required,gt=0"`
	OwnerID            int64              `json:"ownerId" validate:"omitempty,gt=0"`
	Type               storage.OrderType  `json:"typeOrder"`
	Parameters         storage.Parameters `json:"parameters"`
	DocumentationSheet bool               `json:"documentationSheet"`
}

// Разрешённые переходы статусов. AGREED — конечный.
var transitions = map[storage.OrderStatus][]storage.OrderStatus{
	storage.StatusDraft:         {storage.StatusUnderApproval},
	storage.StatusUnderApproval: {storage.StatusAgreed, storage.StatusRejected, storage.StatusDraft},
	storage.StatusRejected:      {storage.StatusDraft},
}

func CanTransition(from, to storage.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, actor storage.Actor, req CreateOrder) (*storage.Order, error) {
	const op = "service.orders.Create"

	req.ContractNumber = strings.TrimSpace(req.ContractNumber)
	req.ComplectName = strings.TrimSpace(req.ComplectName)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
	}

	if req.Type == "" {
		req.Type = storage.TypeRubToRub
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%s: %w: неизвестный тип заказа %q", op, ErrValidation, req.Type)
	}

	if req.OwnerID == 0 {
		req.OwnerID = actor.ID
	}

	if _, err := s.storage.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	params := req.Parameters.WithoutOutputs()

	order := &storage.Order{
		ContractNumber:     req.ContractNumber,
		ComplectName:       req.ComplectName,
		CustomerID:         req.CustomerID,
		OwnerID:            req.OwnerID,
		Status:             storage.StatusDraft,
		Type:               req.Type,
		Parameters:         params,
		DocumentationSheet: req.DocumentationSheet,
	}

	id, err := s.storage.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*storage.Order, error) {
	const op = "service.orders.Get"

	o, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error) {
	const op = "service.orders.List"

	orders, err := s.storage.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// ValidatePatch checks the non-status fields of a patch.
func ValidatePatch(p storage.OrderPatch) error {
	if p.ContractNumber != nil {
		if n := len([]rune(strings.TrimSpace(*p.ContractNumber))); n < 2 || n > 200 {
			return fmt.Errorf("%w: contractNumber должен быть от 2 до 200 символов", ErrValidation)
		}
	}
	if p.ComplectName != nil {
		if n := len([]rune(strings.TrimSpace(*p.ComplectName))); n < 2 || n > 200 {
			return fmt.Errorf("%w: complectName должен быть от 2 до 200 символов", ErrValidation)
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: неизвестный тип заказа %q", ErrValidation, *p.Type)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: неизвестный статус %q", ErrValidation, *p.Status)
	}
	if p.CustomerID != nil && *p.CustomerID <= 0 {
		return fmt.Errorf("%w: customerId", ErrValidation)
	}
	if p.OwnerID != nil && *p.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerId", ErrValidation)
	}
	return nil
}

// Update applies a field patch. Output-only parameters are dropped and the
// rest is merged into the stored bag; a status change goes through Transition.
func (s *Service) Update(ctx context.Context, actor storage.Actor, id int64, patch storage.OrderPatch) (*storage.Order, error) {
	const op = "service.orders.Update"

	if err := ValidatePatch(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Status != nil && !actor.IsAdmin() && !CanTransition(order.Status, *patch.Status) {
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, ErrIllegalTransition, order.Status, *patch.Status)
	}

	if patch.CustomerID != nil && *patch.CustomerID != order.CustomerID {
		if _, err := s.storage.GetCustomer(ctx, *patch.CustomerID); err != nil {
			if errors.Is(err, storage.ErrCustomerNotFound) {
				return nil, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	order.ApplyPatch(patch)
	if patch.Status != nil {
		order.Status = *patch.Status
	}

	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.Get(ctx, id)
}

// Transition moves the order to status to. Same status is a no-op;
// admin may force any transition.
func (s *Service) Transition(ctx context.Context, actor storage.Actor, id int64, to storage.OrderStatus) (*storage.Order, error) {
	const op = "service.orders.Transition"

	if !to.Valid() {
		return nil, fmt.Errorf("%s: %w: неизвестный статус %q", op, ErrValidation, to)
	}

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if order.Status == to {
		return order, nil
	}

	if !actor.IsAdmin() && !CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, ErrIllegalTransition, order.Status, to)
	}

	order.Status = to
	if err := s.storage.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

// Delete удаляет заказ. Только для администратора.
func (s *Service) Delete(ctx context.Context, actor storage.Actor, id int64) error {
	const op = "service.orders.Delete"

	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
