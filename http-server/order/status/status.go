package status

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
	"tender-backend/internal/storage"
)

type StatusChanger interface {
	Transition(ctx context.Context, actor storage.Actor, id int64, to storage.OrderStatus) (*storage.Order, error)
}

type Request struct {
	Status storage.OrderStatus `json:"orderStatus"`
}

func UpdateStatus(log *slog.Logger, changer StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.status.UpdateStatus"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := authmw.ActorFromContext(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := response.ParseID(r)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid ID")
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
			response.Error(w, r, http.StatusBadRequest, "Invalid status")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := changer.Transition(ctx, actor, id, req.Status)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("order status changed", slog.Int64("id", id), slog.String("status", string(order.Status)))

		render.JSON(w, r, order)
	}
}
