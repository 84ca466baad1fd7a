package update

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

type CustomerUpdater interface {
	UpdateCustomer(ctx context.Context, id int64, name string) (*storage.Customer, error)
}

type Request struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
}

func UpdateCustomer(log *slog.Logger, updater CustomerUpdater) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.customer.update.UpdateCustomer"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := response.ParseID(r)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid ID")
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid data")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "название заказчика: от 2 до 200 символов")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		customer, err := updater.UpdateCustomer(ctx, id, req.Name)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, customer)
	}
}
