package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/shop/internal/api"
	m "github.com/RoyceAzure/lab/shop/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SetupRouter checkoutLimiter 只套用在結帳路由
func SetupRouter(server *api.Server, checkoutLimiter *m.TokenBucket, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.With(m.NewRateLimitMiddleware(checkoutLimiter)).Post("/checkout", server.CheckoutHandler.Checkout)
			r.Get("/orders", server.OrderHandler.ListUserOrders)
		})
		r.Get("/orders/{orderID}", server.OrderHandler.GetOrder)
		r.Route("/products/{productID}", func(r chi.Router) {
			r.Put("/price", server.ProductHandler.UpdatePrice)
			r.Get("/stock", server.ProductHandler.GetStock)
		})
	})

	_ = chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
	return r
}
