package preview

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

type Previewer interface {
	Preview(ctx context.Context, t storage.OrderType, params storage.Parameters) (storage.Parameters, error)
}

type Request struct {
	Type       storage.OrderType  `json:"typeOrder"`
	Parameters storage.Parameters `json:"parameters"`
}

type Response struct {
	Type       storage.OrderType  `json:"typeOrder"`
	Parameters storage.Parameters `json:"parameters"`
}

// PreviewOrder считает показатели без сохранения заказа и без файла.
func PreviewOrder(log *slog.Logger, previewer Previewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.order.preview.PreviewOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, http.StatusBadRequest, "Invalid data")
			return
		}
		if req.Type == "" {
			req.Type = storage.TypeRubToRub
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		params, err := previewer.Preview(ctx, req.Type, req.Parameters)
		if err != nil {
			response.FromError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Type: req.Type, Parameters: params})
	}
}
