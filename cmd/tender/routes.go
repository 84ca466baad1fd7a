package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	signin "tender-backend/http-server/auth/signin"
	signup "tender-backend/http-server/auth/signup"
	getrates "tender-backend/http-server/currency/get"
	delcustomer "tender-backend/http-server/customer/delete"
	getcustomer "tender-backend/http-server/customer/get"
	savecustomer "tender-backend/http-server/customer/save"
	upcustomer "tender-backend/http-server/customer/update"
	generate_excel "tender-backend/http-server/generate-report/generate-excel"
	calcorder "tender-backend/http-server/order/calculate"
	delorder "tender-backend/http-server/order/delete"
	getorder "tender-backend/http-server/order/get"
	previeworder "tender-backend/http-server/order/preview"
	saveorder "tender-backend/http-server/order/save"
	statusorder "tender-backend/http-server/order/status"
	uporder "tender-backend/http-server/order/update"
	gettemplate "tender-backend/http-server/template/get"
	deluser "tender-backend/http-server/user/delete"
	getuser "tender-backend/http-server/user/get"
	saveuser "tender-backend/http-server/user/save"
	upuser "tender-backend/http-server/user/update"
	"tender-backend/internal/config"
	"tender-backend/internal/middleware/auth"
	"tender-backend/internal/pricing"
	appstorage "tender-backend/internal/storage"
	"tender-backend/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Post("/api/auth/signup", signup.SignUp(log, svc.auth))
	router.Post("/api/auth/signin", signin.SignIn(log, svc.auth))

	// готовые книги расчёта, ссылка лежит в filePath заказа
	if cfg.Pricing.Storage != "minio" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Pricing.UploadsDir)))
		router.Handle("/uploads/*", fileServer)
	}

	router.Group(func(r chi.Router) {
		r.Use(auth.Bearer(log, svc.auth))

		r.Get("/api/orders", getorder.GetOrders(log, svc.orders))
		r.Post("/api/orders", saveorder.SaveOrder(log, svc.orders))
		r.Post("/api/orders/preview", previeworder.PreviewOrder(log, svc.calculate))
		r.Get("/api/orders/{id}", getorder.GetOrder(log, svc.orders))
		r.Patch("/api/orders/{id}", uporder.UpdateOrder(log, svc.orders))
		r.Delete("/api/orders/{id}", delorder.DeleteOrder(log, svc.orders))
		r.Patch("/api/orders/{id}/status", statusorder.UpdateStatus(log, svc.orders))
		r.Post("/api/orders/{id}/calculate", calcorder.CalculateOrder(log, svc.calculate))
		r.Post("/api/orders/{id}/calculate-usd", calcorder.CalculateOrder(log, svc.calculate))

		r.Get("/api/currency/rates", getrates.GetRates(log, svc.rates))

		r.Get("/api/customers", getcustomer.GetCustomers(log, storage))
		r.Post("/api/customers", savecustomer.SaveCustomer(log, storage))
		r.Get("/api/customers/{id}", getcustomer.GetCustomer(log, storage))
		r.Patch("/api/customers/{id}", upcustomer.UpdateCustomer(log, storage))

		r.Get("/api/users", getuser.GetUsers(log, svc.users))
		r.Get("/api/users/{id}", getuser.GetUser(log, svc.users))
		r.Patch("/api/users/{id}", upuser.UpdateUser(log, svc.users))

		r.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, svc.report))

		r.Get("/api/templates", gettemplate.GetAllTemplates(log, pricing.Catalog{}))
		r.Get("/api/templates/{type}", gettemplate.GetTemplateFile(log, pricing.Catalog{}))

		// справочники пользователей и заказчиков правит только администратор
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(appstorage.RoleAdmin))

			r.Post("/api/users", saveuser.SaveUser(log, svc.users))
			r.Delete("/api/users/{id}", deluser.DeleteUser(log, svc.users))
			r.Delete("/api/customers/{id}", delcustomer.DeleteCustomer(log, storage))
		})
	})

	return router
}
