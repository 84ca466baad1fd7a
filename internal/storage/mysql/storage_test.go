package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/storage"
)

func seed(t *testing.T, s *Storage) (*storage.Customer, int64) {
	t.Helper()
	ctx := context.Background()

	customer, err := s.CreateCustomer(ctx, "ООО Ромашка")
	require.NoError(t, err)

	ownerID, err := s.CreateUser(ctx, &storage.User{
		Username:     "manager",
		Email:        "manager@example.com",
		Role:         storage.RoleTenderManager,
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	return customer, ownerID
}

func TestOrders_CRUD(t *testing.T) {
	cleanTables(t)
	s := NewWithDB(testDB)
	ctx := context.Background()
	customer, ownerID := seed(t, s)

	id, err := s.CreateOrder(ctx, &storage.Order{
		ContractNumber: "Д-1",
		ComplectName:   "Комплект",
		CustomerID:     customer.ID,
		OwnerID:        ownerID,
		Status:         storage.StatusDraft,
		Type:           storage.TypeRubToRub,
		Parameters:     storage.Parameters{"purchase": 100000.0},
	})
	require.NoError(t, err)

	order, err := s.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Д-1", order.ContractNumber)
	assert.Equal(t, storage.TypeRubToRub, order.Type)
	assert.Equal(t, 100000.0, order.Parameters.Float("purchase"))
	assert.Nil(t, order.FilePath)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "ООО Ромашка", order.Customer.Name)
	require.NotNil(t, order.Owner)
	assert.Equal(t, "manager", order.Owner.Username)

	path := "http://localhost/uploads/order_1_abc.xlsx"
	order.FilePath = &path
	order.Parameters[storage.ParamCompanyProfit] = 25800.0
	require.NoError(t, s.UpdateOrder(ctx, order))

	// повторное сохранение без изменений не должно выглядеть как "не найдено"
	require.NoError(t, s.UpdateOrder(ctx, order))

	updated, err := s.GetOrder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, updated.FilePath)
	assert.Equal(t, path, *updated.FilePath)
	assert.Equal(t, 25800.0, updated.Parameters.Float(storage.ParamCompanyProfit))

	orders, err := s.ListOrders(ctx, storage.OrderFilter{Status: storage.StatusDraft})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = s.ListOrders(ctx, storage.OrderFilter{Type: storage.TypeUsdToRub})
	require.NoError(t, err)
	assert.Empty(t, orders)

	require.NoError(t, s.DeleteOrder(ctx, id))
	_, err = s.GetOrder(ctx, id)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	assert.ErrorIs(t, s.DeleteOrder(ctx, id), storage.ErrOrderNotFound)
}

func TestOrders_UnknownCustomer(t *testing.T) {
	cleanTables(t)
	s := NewWithDB(testDB)
	_, ownerID := seed(t, s)

	_, err := s.CreateOrder(context.Background(), &storage.Order{
		ContractNumber: "Д-2",
		ComplectName:   "Комплект",
		CustomerID:     999999,
		OwnerID:        ownerID,
		Status:         storage.StatusDraft,
		Type:           storage.TypeRubToRub,
	})
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestCustomers(t *testing.T) {
	cleanTables(t)
	s := NewWithDB(testDB)
	ctx := context.Background()
	customer, ownerID := seed(t, s)

	updated, err := s.UpdateCustomer(ctx, customer.ID, "АО Лютик")
	require.NoError(t, err)
	assert.Equal(t, "АО Лютик", updated.Name)

	_, err = s.CreateOrder(ctx, &storage.Order{
		ContractNumber: "Д-3",
		ComplectName:   "Комплект",
		CustomerID:     customer.ID,
		OwnerID:        ownerID,
		Status:         storage.StatusDraft,
		Type:           storage.TypeRubToRub,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCustomer(ctx, customer.ID), storage.ErrCustomerInUse)

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetCustomer(ctx, 999999)
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestUsers(t *testing.T) {
	cleanTables(t)
	s := NewWithDB(testDB)
	ctx := context.Background()
	_, ownerID := seed(t, s)

	_, err := s.CreateUser(ctx, &storage.User{
		Username:     "manager",
		Email:        "other@example.com",
		Role:         storage.RoleBoss,
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, storage.ErrUserExists)

	u, err := s.GetUserByLogin(ctx, "manager@example.com")
	require.NoError(t, err)
	assert.Equal(t, ownerID, u.ID)

	phone := "+7 900 000-00-00"
	role := storage.RoleBoss
	require.NoError(t, s.UpdateUser(ctx, ownerID, storage.UserPatch{Phone: &phone, Role: &role}, "new-hash"))

	u, err = s.GetUser(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)
	assert.Equal(t, storage.RoleBoss, u.Role)
	assert.Equal(t, "new-hash", u.PasswordHash)

	_, err = s.GetUser(ctx, 999999)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
