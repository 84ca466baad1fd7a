package calculate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tender-backend/internal/pricing"
	svc "tender-backend/internal/service/calculate"
	"tender-backend/internal/service/orders"
	"tender-backend/internal/storage"
)

type MockCalculator struct {
	mock.Mock
}

func (m *MockCalculator) Calculate(ctx context.Context, id int64, patch storage.OrderPatch) (*storage.Order, error) {
	args := m.Called(ctx, id, patch)
	o, _ := args.Get(0).(*storage.Order)
	return o, args.Error(1)
}

func serve(calc Calculator, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/api/orders/{id}/calculate", CalculateOrder(slog.Default(), calc))
	r.Post("/api/orders/{id}/calculate-usd", CalculateOrder(slog.Default(), calc))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rr
}

func TestCalculateOrder_Success(t *testing.T) {
	calc := new(MockCalculator)
	calc.On("Calculate", mock.Anything, int64(12), mock.MatchedBy(func(p storage.OrderPatch) bool {
		return p.Parameters.Float("purchase") == 100000
	})).Return(&storage.Order{ID: 12, Parameters: storage.Parameters{storage.ParamCompanyProfit: 25800.0}}, nil)

	rr := serve(calc, "/api/orders/12/calculate", `{"parameters": {"purchase": 100000}}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"companyProfit":25800`)
}

func TestCalculateOrder_EmptyBody(t *testing.T) {
	calc := new(MockCalculator)
	calc.On("Calculate", mock.Anything, int64(3), storage.OrderPatch{}).Return(&storage.Order{ID: 3}, nil)

	rr := serve(calc, "/api/orders/3/calculate-usd", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	calc.AssertExpectations(t)
}

func TestCalculateOrder_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", fmt.Errorf("op: %w", storage.ErrOrderNotFound), http.StatusNotFound},
		{"template missing", fmt.Errorf("op: %w: /tmp/x.xlsx", pricing.ErrTemplateNotFound), http.StatusInternalServerError},
		{"invalid patch", fmt.Errorf("op: %w: complectName должен быть от 2 до 200 символов", orders.ErrValidation), http.StatusBadRequest},
		{"rates", fmt.Errorf("op: %w: %w", svc.ErrRatesUnavailable, errors.New("timeout")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := new(MockCalculator)
			calc.On("Calculate", mock.Anything, int64(1), mock.Anything).Return(nil, tt.err)

			assert.Equal(t, tt.code, serve(calc, "/api/orders/1/calculate", `{}`).Code)
		})
	}
}

func TestCalculateOrder_InvalidJSON(t *testing.T) {
	calc := new(MockCalculator)

	assert.Equal(t, http.StatusBadRequest, serve(calc, "/api/orders/1/calculate", `{"parameters":`).Code)
	calc.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything, mock.Anything)
}
