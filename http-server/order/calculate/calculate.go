package calculate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/storage"
)

type Calculator interface {
	Calculate(ctx context.Context, id int64, patch storage.OrderPatch) (*storage.Order, error)
}

// CalculateOrder обслуживает и calculate, и calculate-usd: сценарий берётся из сохранённого заказа.
func CalculateOrder(log *slog.Logger, calc Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.calculate.CalculateOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := response.ParseID(r)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid ID")
			return
		}

		// пустое тело: пересчёт по сохранённым параметрам
		var patch storage.OrderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
			log.Error("Invalid JSON", slog.String("error", err.Error()))
			response.Error(w, r, http.StatusBadRequest, "Invalid data")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		order, err := calc.Calculate(ctx, id, patch)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, order)
	}
}
