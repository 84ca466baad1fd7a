package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tender-backend/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateOrder(ctx context.Context, o *storage.Order) (int64, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*storage.Order)
	return o, args.Error(1)
}

func (m *MockStorage) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]*storage.Order)
	return orders, args.Error(1)
}

func (m *MockStorage) UpdateOrder(ctx context.Context, o *storage.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockStorage) DeleteOrder(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) GetCustomer(ctx context.Context, id int64) (*storage.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*storage.Customer)
	return c, args.Error(1)
}

var (
	admin   = storage.Actor{ID: 1, Role: storage.RoleAdmin}
	manager = storage.Actor{ID: 2, Role: storage.RoleTenderManager}
)

func TestCreate_Defaults(t *testing.T) {
	st := new(MockStorage)
	st.On("GetCustomer", mock.Anything, int64(3)).Return(&storage.Customer{ID: 3}, nil)
	st.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *storage.Order) bool {
		return o.OwnerID == manager.ID &&
			o.Status == storage.StatusDraft &&
			o.Type == storage.TypeRubToRub &&
			!o.Parameters.Has(storage.ParamCompanyProfit) &&
			o.Parameters.Float("purchase") == 100
	})).Return(int64(10), nil)
	st.On("GetOrder", mock.Anything, int64(10)).Return(&storage.Order{ID: 10}, nil)

	o, err := New(st).Create(context.Background(), manager, CreateOrder{
		ContractNumber: "Д-1",
		ComplectName:   "Комплект",
		CustomerID:     3,
		Parameters:     storage.Parameters{"purchase": 100.0, storage.ParamCompanyProfit: 1e9},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), o.ID)
	st.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	st := new(MockStorage)

	_, err := New(st).Create(context.Background(), manager, CreateOrder{ContractNumber: "Д", ComplectName: "Комплект", CustomerID: 3})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = New(st).Create(context.Background(), manager, CreateOrder{ContractNumber: "Д-1", ComplectName: "Комплект"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = New(st).Create(context.Background(), manager, CreateOrder{
		ContractNumber: "Д-1", ComplectName: "Комплект", CustomerID: 3, Type: "EUR_TO_RUB",
	})
	assert.ErrorIs(t, err, ErrValidation)

	st.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreate_UnknownCustomer(t *testing.T) {
	st := new(MockStorage)
	st.On("GetCustomer", mock.Anything, int64(3)).Return(nil, storage.ErrCustomerNotFound)

	_, err := New(st).Create(context.Background(), manager, CreateOrder{ContractNumber: "Д-1", ComplectName: "Комплект", CustomerID: 3})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, storage.ErrCustomerNotFound)
}

func TestDelete_NonAdminForbidden(t *testing.T) {
	st := new(MockStorage)

	err := New(st).Delete(context.Background(), manager, 5)
	assert.ErrorIs(t, err, ErrForbidden)
	st.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
}

func TestDelete_Admin(t *testing.T) {
	st := new(MockStorage)
	st.On("DeleteOrder", mock.Anything, int64(5)).Return(nil)

	require.NoError(t, New(st).Delete(context.Background(), admin, 5))
	st.AssertExpectations(t)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to storage.OrderStatus
		ok       bool
	}{
		{storage.StatusDraft, storage.StatusUnderApproval, true},
		{storage.StatusDraft, storage.StatusAgreed, false},
		{storage.StatusUnderApproval, storage.StatusAgreed, true},
		{storage.StatusUnderApproval, storage.StatusRejected, true},
		{storage.StatusUnderApproval, storage.StatusDraft, true},
		{storage.StatusRejected, storage.StatusDraft, true},
		{storage.StatusRejected, storage.StatusAgreed, false},
		{storage.StatusAgreed, storage.StatusDraft, false},
		{storage.StatusAgreed, storage.StatusAgreed, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransition(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(&storage.Order{ID: 7, Status: storage.StatusAgreed}, nil)

	_, err := New(st).Transition(context.Background(), manager, 7, storage.StatusDraft)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	st.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)

	st.On("UpdateOrder", mock.Anything, mock.MatchedBy(func(o *storage.Order) bool {
		return o.Status == storage.StatusDraft
	})).Return(nil)

	o, err := New(st).Transition(context.Background(), admin, 7, storage.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusDraft, o.Status)
}

func TestTransition_SameStatusNoop(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(7)).Return(&storage.Order{ID: 7, Status: storage.StatusAgreed}, nil)

	o, err := New(st).Transition(context.Background(), manager, 7, storage.StatusAgreed)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusAgreed, o.Status)
	st.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestUpdate_MergesParameters(t *testing.T) {
	st := new(MockStorage)
	stored := &storage.Order{
		ID:         4,
		Status:     storage.StatusDraft,
		Type:       storage.TypeRubToRub,
		Parameters: storage.Parameters{"purchase": 100.0, "delivery": 5.0, storage.ParamCompanyProfit: 42.0},
	}
	st.On("GetOrder", mock.Anything, int64(4)).Return(stored, nil)
	st.On("UpdateOrder", mock.Anything, mock.MatchedBy(func(o *storage.Order) bool {
		return o.Parameters.Float("purchase") == 200 &&
			o.Parameters.Float("delivery") == 5 &&
			o.Parameters.Float(storage.ParamCompanyProfit) == 42 &&
			o.ContractNumber == "Д-9"
	})).Return(nil)

	contract := "Д-9"
	_, err := New(st).Update(context.Background(), manager, 4, storage.OrderPatch{
		ContractNumber: &contract,
		Parameters:     storage.Parameters{"purchase": 200.0, storage.ParamCompanyProfit: 1.0},
	})
	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestUpdate_IllegalStatus(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(4)).Return(&storage.Order{ID: 4, Status: storage.StatusDraft}, nil)

	status := storage.StatusAgreed
	_, err := New(st).Update(context.Background(), manager, 4, storage.OrderPatch{Status: &status})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestUpdate_NotFound(t *testing.T) {
	st := new(MockStorage)
	st.On("GetOrder", mock.Anything, int64(4)).Return(nil, storage.ErrOrderNotFound)

	_, err := New(st).Update(context.Background(), manager, 4, storage.OrderPatch{})
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}
