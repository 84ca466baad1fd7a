package update

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

type OrderUpdater interface {
	Update(ctx context.Context, actor storage.Actor, id int64, patch storage.OrderPatch) (*storage.Order, error)
}

func UpdateOrder(log *slog.Logger, updater OrderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.update.UpdateOrder"

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

		var patch storage.OrderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			log.Error("Invalid JSON", slog.String("error", err.Error()))
			response.Error(w, r, http.StatusBadRequest, "Invalid data")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := updater.Update(ctx, actor, id, patch)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("order updated", slog.Int64("id", id))

		render.JSON(w, r, order)
	}
}
