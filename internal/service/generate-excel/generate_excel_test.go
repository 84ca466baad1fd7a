package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tender-backend/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]*storage.Order)
	return orders, args.Error(1)
}

func TestGenerateExcel(t *testing.T) {
	filter := storage.OrderFilter{Status: storage.StatusAgreed}
	file := "http://localhost:4001/uploads/order_1_abcd1234.xlsx"

	st := new(MockStorage)
	st.On("ListOrders", mock.Anything, filter).Return([]*storage.Order{
		{
			ID:             1,
			ContractNumber: "Д-1",
			ComplectName:   "Комплект",
			CustomerID:     3,
			OwnerID:        2,
			Customer:       &storage.Customer{ID: 3, Name: "ООО Ромашка"},
			Owner:          &storage.User{ID: 2, Username: "ivan"},
			Status:         storage.StatusAgreed,
			Type:           storage.TypeRubToRub,
			Parameters:     storage.Parameters{"purchase": 100000.0, storage.ParamCompanyProfit: 25800.0},
			FilePath:       &file,
			CreatedAt:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
	}, nil)

	data, err := NewGenerateService(st).GenerateExcel(context.Background(), filter)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "Д-1", rows[1][1])
	assert.Equal(t, "ООО Ромашка", rows[1][3])
	assert.Equal(t, "ivan", rows[1][4])
	assert.Equal(t, "Согласован", rows[1][5])
	assert.Equal(t, "RUB_TO_RUB", rows[1][6])
	assert.Equal(t, file, rows[1][15])
	st.AssertExpectations(t)

	profit, err := f.GetCellValue(sheet, "J2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "25800", profit)

	panes, err := f.GetPanes(sheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestGenerateExcel_FetchError(t *testing.T) {
	st := new(MockStorage)
	st.On("ListOrders", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewGenerateService(st).GenerateExcel(context.Background(), storage.OrderFilter{})
	require.Error(t, err)
}

func TestGenerateExcel_WithoutJoinedNames(t *testing.T) {
	st := new(MockStorage)
	st.On("ListOrders", mock.Anything, storage.OrderFilter{}).Return([]*storage.Order{
		{ID: 5, ContractNumber: "Д-5", ComplectName: "Комплект", Status: storage.StatusDraft, Type: storage.TypeUsdToRub},
	}, nil)

	data, err := NewGenerateService(st).GenerateExcel(context.Background(), storage.OrderFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	customer, err := f.GetCellValue(sheet, "D2")
	require.NoError(t, err)
	assert.Empty(t, customer)

	status, err := f.GetCellValue(sheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "Черновик", status)
}
