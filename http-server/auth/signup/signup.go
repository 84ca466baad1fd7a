package signup

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/service/auth"
	"tender-backend/internal/storage"
)

type Registrar interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*storage.User, error)
}

func SignUp(log *slog.Logger, registrar Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.auth.signup.SignUp"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req auth.SignUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "ошибка парсинга JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := registrar.SignUp(ctx, req)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("user signed up", slog.Int64("id", user.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, user)
	}
}
