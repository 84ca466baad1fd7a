package delete

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
)

type CustomerDeleter interface {
	DeleteCustomer(ctx context.Context, id int64) error
}

// DeleteCustomer: заказчика с заказами удалить нельзя, 409.
func DeleteCustomer(log *slog.Logger, deleter CustomerDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.customer.delete.DeleteCustomer"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := response.ParseID(r)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.DeleteCustomer(ctx, id); err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("customer deleted", slog.Int64("id", id))

		render.JSON(w, r, response.Response{Status: response.StatusOK})
	}
}
