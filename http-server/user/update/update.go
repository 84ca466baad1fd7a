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

type UserUpdater interface {
	Update(ctx context.Context, actor storage.Actor, id int64, patch storage.UserPatch) (*storage.User, error)
}

func UpdateUser(log *slog.Logger, updater UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.user.update.UpdateUser"

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

		var patch storage.UserPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid data")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := updater.Update(ctx, actor, id, patch)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, user)
	}
}
