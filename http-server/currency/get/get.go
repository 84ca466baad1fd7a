package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tender-backend/http-server/response"
	"tender-backend/internal/pricing"
)

type RatesProvider interface {
	Rates(ctx context.Context) (pricing.Rates, error)
}

type ResponseRates struct {
	Rates  pricing.Rates `json:"rates"`
	Status string        `json:"status"`
}

// GetRates отдаёт курсы ЦБ, которые попадут в расчёт USD_TO_RUB.
func GetRates(log *slog.Logger, provider RatesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.currency.get.GetRates"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		rates, err := provider.Rates(ctx)
		if err != nil {
			log.Error("failed to fetch rates", slog.String("error", err.Error()))
			response.Error(w, r, http.StatusBadGateway, "курсы валют недоступны")
			return
		}

		render.JSON(w, r, ResponseRates{Rates: rates, Status: response.StatusOK})
	}
}
