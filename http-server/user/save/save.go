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
	"tender-backend/internal/service/users"
	"tender-backend/internal/storage"
)

type UserCreator interface {
	Create(ctx context.Context, actor storage.Actor, req users.CreateUser) (*storage.User, error)
}

func SaveUser(log *slog.Logger, creator UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.user.save.SaveUser"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := authmw.ActorFromContext(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req users.CreateUser
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "ошибка парсинга JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := creator.Create(ctx, actor, req)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("user created", slog.Int64("id", user.ID), slog.String("role", string(user.Role)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, user)
	}
}
