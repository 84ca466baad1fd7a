package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/storage"
)

type ResponseOrders struct {
	Orders []*storage.Order `json:"orders"`
	Status string           `json:"status"`
}

type OrderGetter interface {
	Get(ctx context.Context, id int64) (*storage.Order, error)
	List(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error)
}

const dateLayout = "2006-01-02"

// ParseFilter читает from, to (включительно), status и type из query.
func ParseFilter(r *http.Request) (storage.OrderFilter, error) {
	var filter storage.OrderFilter
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		from, err := time.Parse(dateLayout, s)
		if err != nil {
			return filter, fmt.Errorf("invalid from date")
		}
		filter.From = from
	}
	if s := q.Get("to"); s != "" {
		to, err := time.Parse(dateLayout, s)
		if err != nil {
			return filter, fmt.Errorf("invalid to date")
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	if s := q.Get("status"); s != "" {
		status := storage.OrderStatus(s)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status")
		}
		filter.Status = status
	}
	if s := q.Get("type"); s != "" {
		t, ok := storage.ParseOrderType(s)
		if !ok {
			return filter, fmt.Errorf("invalid type")
		}
		filter.Type = t
	}

	return filter, nil
}

func GetOrders(log *slog.Logger, getter OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.GetOrders"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter, err := ParseFilter(r)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders, err := getter.List(ctx, filter)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, ResponseOrders{Orders: orders, Status: response.StatusOK})
	}
}

func GetOrder(log *slog.Logger, getter OrderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.get.GetOrder"

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

		order, err := getter.Get(ctx, id)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, order)
	}
}
