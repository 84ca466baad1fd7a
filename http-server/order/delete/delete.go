package delete

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	authmw "tender-backend/internal/middleware/auth"
	"tender-backend/internal/storage"
)

type OrderDeleter interface {
	Delete(ctx context.Context, actor storage.Actor, id int64) error
}

// DeleteOrder удаляет заказ, доступно только admin.
func DeleteOrder(log *slog.Logger, deleter OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.delete.DeleteOrder"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.Delete(ctx, actor, id); err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("order deleted", slog.Int64("id", id), slog.Int64("actor", actor.ID))

		render.JSON(w, r, response.Response{Status: response.StatusOK})
	}
}
