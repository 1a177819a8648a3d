package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает REST-маршруты сервиса. Идемпотентной обработкой
// покрывается только создание заказа: остальные операции либо безопасны
// для повтора сами по себе, либо защищены optimistic locking.
func NewRouter(
	products *ProductHandler,
	orders *OrderHandler,
	idem *IdempotencyMiddleware,
	logger *log.Entry,
) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", products.Create)
			r.Get("/", products.List)
			r.Get("/{id}", products.Get)
			r.Put("/{id}", products.Update)
			r.Put("/{id}/price", products.UpdatePrice)
			r.Post("/{id}/activate", products.Activate)
			r.Post("/{id}/deactivate", products.Deactivate)
			r.Delete("/{id}", products.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			if idem != nil {
				r.With(idem.Handle).Post("/", orders.Create)
			} else {
				r.Post("/", orders.Create)
			}
			r.Get("/", orders.List)
			r.Get("/{id}", orders.Get)
			r.Post("/{id}/items", orders.AddItem)
			r.Delete("/{id}/items/{productId}", orders.RemoveItem)
			r.Put("/{id}/items/{productId}", orders.UpdateItemQuantity)
			r.Put("/{id}/customer-info", orders.SetCustomerInfo)
			r.Post("/{id}/submit", orders.Submit)
			r.Post("/{id}/confirm", orders.Confirm)
			r.Post("/{id}/start-processing", orders.StartProcessing)
			r.Post("/{id}/ship", orders.Ship)
			r.Post("/{id}/deliver", orders.Deliver)
			r.Post("/{id}/cancel", orders.Cancel)
			r.Put("/{id}/status", orders.UpdateStatus)
			r.Delete("/{id}", orders.Delete)
			r.Get("/{id}/history", orders.StatusHistory)
			r.Get("/{id}/shipping-quote", orders.ShippingQuote)
		})
	})

	return r
}

// requestLogger пишет access-лог завершённых запросов.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request completed")
		})
	}
}
