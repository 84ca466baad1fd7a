package signin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/storage"
)

type Authenticator interface {
	SignIn(ctx context.Context, login, password string) (string, *storage.User, error)
}

type Request struct {
	// Login — username или email.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Response struct {
	Token string        `json:"token"`
	User  *storage.User `json:"user"`
}

func SignIn(log *slog.Logger, authenticator Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.auth.signin.SignIn"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.Password == "" {
			response.Error(w, r, http.StatusBadRequest, "укажите логин и пароль")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		token, user, err := authenticator.SignIn(ctx, req.Login, req.Password)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Token: token, User: user})
	}
}
