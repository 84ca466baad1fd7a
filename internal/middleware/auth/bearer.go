package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	authsvc "tender-backend/internal/service/auth"
	"tender-backend/internal/storage"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (storage.Actor, error)
}

type ctxKey struct{}

func WithActor(ctx context.Context, actor storage.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFromContext возвращает пользователя, положенного Bearer.
func ActorFromContext(ctx context.Context) (storage.Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(storage.Actor)
	return actor, ok
}

// Bearer validates "Authorization: Bearer <jwt>" and puts the acting user
// into the request context. A rejected token is 401, a failed user lookup 500.
func Bearer(log *slog.Logger, authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.Bearer"

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				requireAuth(w)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				requireAuth(w)
				return
			}

			actor, err := authenticator.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				log := log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("error", err.Error()),
				)
				if errors.Is(err, authsvc.ErrInvalidToken) || errors.Is(err, authsvc.ErrTokenExpired) {
					log.Debug("token rejected")
					requireAuth(w)
					return
				}
				log.Error("failed to authenticate")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole пропускает только перечисленные роли.
func RequireRole(roles ...storage.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				requireAuth(w)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="tender"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
