package httpx

import (
	"net/http"
	"time"

	"smoothie-be/internal/cart"
	"smoothie-be/internal/coupon"
	"smoothie-be/internal/logger"
	"smoothie-be/internal/metrics"
	appmw "smoothie-be/internal/middleware"
	"smoothie-be/internal/order"
	"smoothie-be/internal/product"
	"smoothie-be/internal/slip"
	"smoothie-be/internal/user"
	"smoothie-be/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handler bundles every dependency the HTTP surface needs.
type Handler struct {
	Products product.Repository
	Carts    cart.Service
	Orders   order.Service
	Coupons  coupon.Repository
	Users    user.Service
	Verifier *slip.Verifier
	Hub      *ws.Hub
	Stats    *metrics.Stats
}

func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(appmw.CORS)
	r.Use(appmw.AuthMiddleware)
	r.Use(appmw.RateLimitMiddleware)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)

		r.Post("/cart/items", h.addToCart)
		r.Get("/cart", h.getCart)
		r.Delete("/cart", h.cancelCart)

		r.Post("/checkout", h.checkout)
		r.Get("/orders", h.orderHistory)
		r.Get("/orders/{id}", h.getOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(appmw.RequireAdmin)

			r.Get("/orders", h.adminListOrders)
			r.Post("/orders/{id}/verify-slip", h.verifySlip)
			r.Patch("/orders/{id}/delivery-status", h.setDeliveryStatus)
			r.Post("/orders/{id}/verification-override", h.overrideVerification)

			r.Post("/products", h.createProduct)
			r.Patch("/products/{id}", h.updateProduct)

			r.Get("/coupons", h.listCoupons)
			r.Post("/coupons", h.createCoupon)
			r.Patch("/coupons/{id}/active", h.setCouponActive)

			r.Get("/stats", h.stats)
		})
	})

	// The dashboard stream authenticates via the token query param handled
	// inside the upgrade handler, not the admin header guard.
	r.Get("/ws/orders", h.serveWS)

	return r
}
