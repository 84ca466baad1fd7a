package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	authmw "tender-backend/internal/middleware/auth"
	"tender-backend/internal/service/orders"
	"tender-backend/internal/storage"
)

type OrderCreator interface {
	Create(ctx context.Context, actor storage.Actor, req orders.CreateOrder) (*storage.Order, error)
}

func SaveOrder(log *slog.Logger, creator OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.save.SaveOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := authmw.ActorFromContext(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req orders.CreateOrder
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("error", err.Error()))
			response.Error(w, r, http.StatusBadRequest, "ошибка парсинга JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := creator.Create(ctx, actor, req)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("order created", slog.Int64("id", order.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, order)
	}
}
