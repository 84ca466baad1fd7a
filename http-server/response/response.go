package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tender-backend/internal/pricing"
	"tender-backend/internal/service/auth"
	"tender-backend/internal/service/calculate"
	"tender-backend/internal/service/orders"
	"tender-backend/internal/service/users"
	"tender-backend/internal/storage"
)

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func Error(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, Response{Status: StatusError, Error: msg})
}

// StatusOf сопоставляет ошибку сервиса или хранилища с HTTP-кодом и текстом для клиента.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrOrderNotFound):
		return http.StatusNotFound, "заказ не найден"
	case errors.Is(err, storage.ErrCustomerNotFound):
		return http.StatusNotFound, "заказчик не найден"
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, "пользователь не найден"
	case errors.Is(err, storage.ErrUserExists):
		return http.StatusConflict, "пользователь с таким логином или email уже существует"
	case errors.Is(err, storage.ErrCustomerInUse):
		return http.StatusConflict, "у заказчика есть заказы"
	case errors.Is(err, orders.ErrIllegalTransition):
		return http.StatusConflict, "недопустимая смена статуса"
	case errors.Is(err, orders.ErrValidation),
		errors.Is(err, users.ErrValidation),
		errors.Is(err, auth.ErrValidation),
		errors.Is(err, pricing.ErrUnknownOrderType):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, orders.ErrForbidden), errors.Is(err, users.ErrForbidden):
		return http.StatusForbidden, "недостаточно прав"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "неверный логин или пароль"
	case errors.Is(err, calculate.ErrRatesUnavailable):
		return http.StatusBadGateway, "курсы валют недоступны"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "превышено время ожидания"
	}
	return http.StatusInternalServerError, "внутренняя ошибка"
}

func validationMessage(err error) string {
	text := err.Error()
	for _, sentinel := range []error{orders.ErrValidation, users.ErrValidation, auth.ErrValidation, pricing.ErrUnknownOrderType} {
		if _, detail, ok := strings.Cut(text, sentinel.Error()+": "); ok {
			return "некорректные данные: " + detail
		}
	}
	return "некорректные данные"
}

// FromError logs the error and writes the mapped status. 5xx are logged as errors.
func FromError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code, msg := StatusOf(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("error", err.Error()), slog.Int("status", code))
	} else {
		log.Info("request rejected", slog.String("error", err.Error()), slog.Int("status", code))
	}
	Error(w, r, code, msg)
}

func ParseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
