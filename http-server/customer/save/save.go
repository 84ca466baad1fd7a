package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tender-backend/http-server/response"
	"tender-backend/internal/storage"
)

type CustomerCreator interface {
	CreateCustomer(ctx context.Context, name string) (*storage.Customer, error)
}

type Request struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
}

func SaveCustomer(log *slog.Logger, creator CustomerCreator) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.customer.save.SaveCustomer"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "ошибка парсинга JSON")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "название заказчика: от 2 до 200 символов")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		customer, err := creator.CreateCustomer(ctx, req.Name)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		log.Info("customer created", slog.Int64("id", customer.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, customer)
	}
}
