package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	getorder "tender-backend/http-server/order/get"
	"tender-backend/http-server/response"
	"tender-backend/internal/artifact"
	"tender-backend/internal/storage"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, filter storage.OrderFilter) ([]byte, error)
}

// GenerateReportExcel отдаёт реестр заказов в xlsx. Без from берётся начало текущего месяца.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter, err := getorder.ParseFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if filter.From.IsZero() {
			now := time.Now()
			filter.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second) // На Excel можно побольше времени
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, filter)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		fileName := fmt.Sprintf("Orders_Report_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", artifact.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
