package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campuseats/internal/http/handlers"
	"campuseats/internal/http/middleware"
	"campuseats/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	logger logx.Logger,
	base *handlers.Handlers,
	orders *handlers.OrderHandler,
	delivery *handlers.DeliveryHandler,
	earnings *handlers.EarningsHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(middleware.Observability(logger))

	r.Get("/ping", base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(base.NotFound))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Get("/orders/{orderID}", orders.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleOwner))
			r.Patch("/orders/{orderID}/shops/{shopID}/status", orders.UpdateShopStatus)
			r.Get("/earnings/owner/today", earnings.OwnerToday)
			r.Get("/earnings/owner/month", earnings.OwnerMonth)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleCourier))
			r.Get("/orders/available", orders.Available)
			r.Get("/orders/my", orders.My)
			r.Post("/orders/{orderID}/accept", delivery.Accept)
			r.Post("/orders/{orderID}/reject", delivery.Reject)
			r.Patch("/orders/{orderID}/delivery-status", delivery.Advance)
			r.Post("/orders/{orderID}/otp", delivery.RegenerateCode)
			r.Post("/orders/{orderID}/otp/verify", delivery.VerifyCode)
			r.Get("/earnings/courier/today", earnings.CourierToday)
			r.Get("/earnings/courier/month", earnings.CourierMonth)
		})
	})

	return r
}
