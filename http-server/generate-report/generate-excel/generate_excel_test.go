package generate_excel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tender-backend/internal/artifact"
	"tender-backend/internal/storage"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateExcel(ctx context.Context, filter storage.OrderFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func TestGenerateReportExcel(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateExcel", mock.Anything, mock.MatchedBy(func(f storage.OrderFilter) bool {
		return !f.From.IsZero() && f.Status == storage.StatusAgreed
	})).Return([]byte("xlsx"), nil)

	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report/excel?status=AGREED", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, artifact.ContentTypeXLSX, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Orders_Report_")
	assert.Equal(t, "xlsx", rr.Body.String())
}

func TestGenerateReportExcel_Errors(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateExcel", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report/excel?from=bad", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), gen).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report/excel", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
