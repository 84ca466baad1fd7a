package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/storage"
)

type CustomerGetter interface {
	GetCustomer(ctx context.Context, id int64) (*storage.Customer, error)
	ListCustomers(ctx context.Context) ([]storage.Customer, error)
}

func GetCustomers(log *slog.Logger, getter CustomerGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.customer.get.GetCustomers"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		customers, err := getter.ListCustomers(ctx)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, customers)
	}
}

func GetCustomer(log *slog.Logger, getter CustomerGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.customer.get.GetCustomer"

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

		customer, err := getter.GetCustomer(ctx, id)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, customer)
	}
}
