// Package httptransport serves the storefront's JSON API to page components.
package httptransport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nikolayk812/pharmacy-storefront/internal/admin"
	"github.com/nikolayk812/pharmacy-storefront/internal/booking"
	"github.com/nikolayk812/pharmacy-storefront/internal/checkout"
	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"github.com/nikolayk812/pharmacy-storefront/internal/prescription"
	"github.com/nikolayk812/pharmacy-storefront/internal/session"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CookieName     string
	SecureCookies  bool
	SessionTTL     time.Duration
	AllowedOrigins []string
	Currency       currency.Unit
}

// Deps are the services behind the routes. Catalog and Account are usually
// the query cache in front of the remote API.
type Deps struct {
	Catalog       port.CatalogQuerier
	Account       AccountService
	Sessions      *session.Store
	Checkout      *checkout.Service
	Booking       *booking.Service
	Prescriptions *prescription.Service
	Admin         *admin.Service
	Validator     *validate.Validator
	Metrics       *metrics.Metrics
}

// AccountService is what the transport needs for the caller's own records.
type AccountService interface {
	port.ProfileService
	GetMyOrders(ctx context.Context) ([]domain.Order, error)
}

type HTTPTransport struct {
	server *http.Server
	router *chi.Mux

	cfg   Config
	deps  Deps
	views views
	log   *zap.Logger
}

func NewHTTPTransport(cfg Config, deps Deps, log *zap.Logger) (*HTTPTransport, error) {
	switch {
	case deps.Catalog == nil:
		return nil, fmt.Errorf("catalog is nil")
	case deps.Account == nil:
		return nil, fmt.Errorf("account is nil")
	case deps.Sessions == nil:
		return nil, fmt.Errorf("sessions is nil")
	case deps.Checkout == nil, deps.Booking == nil, deps.Prescriptions == nil, deps.Admin == nil:
		return nil, fmt.Errorf("services are not wired")
	}

	if deps.Validator == nil {
		deps.Validator = validate.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sf_session"
	}

	h := &HTTPTransport{
		cfg:   cfg,
		deps:  deps,
		views: views{currency: cfg.Currency},
		log:   log.Named("http"),
	}

	h.router = h.newRouter()
	h.registerRoutes()

	h.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      h.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return h, nil
}

func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// Run serves until Shutdown is called.
func (h *HTTPTransport) Run() error {
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}
	return nil
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func (h *HTTPTransport) newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(h.requestLogger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	return router
}

func (h *HTTPTransport) registerRoutes() {
	h.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if h.deps.Metrics != nil {
		h.router.Handle("/metrics", h.deps.Metrics.Handler())
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Use(h.credential)

		r.Get("/products", h.searchProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.getCategories)
		r.Get("/lab-tests", h.getLabTests)
		r.Get("/lab-tests/{id}", h.getLabTest)
		r.Get("/health-packages", h.getHealthPackages)
		r.Get("/health-packages/popular", h.getPopularHealthPackages)
		r.Get("/health-packages/{id}", h.getHealthPackage)
		r.Get("/articles", h.getArticles)
		r.Get("/articles/{id}", h.getArticle)
		r.Get("/booking-slots", h.getBookingSlots)

		r.Group(func(r chi.Router) {
			r.Use(h.session)

			r.Get("/cart", h.getCart)
			r.Post("/cart/products/{id}", h.addProduct)
			r.Post("/cart/lab-tests/{id}", h.addLabTest)
			r.Post("/cart/health-packages/{id}", h.addHealthPackage)
			r.Put("/cart/items/{itemID}", h.setQuantity)
			r.Delete("/cart/items/{itemID}", h.removeItem)
			r.Delete("/cart", h.clearCart)
			r.Post("/checkout", h.checkout)
		})

		r.Get("/orders", h.getMyOrders)
		r.Post("/orders/{id}/prescription", h.uploadPrescription)
		r.Get("/prescriptions", h.getMyPrescriptions)
		r.Post("/bookings", h.bookLabTest)
		r.Get("/bookings", h.getMyBookings)
		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.saveProfile)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Post("/lab-tests", h.adminAddLabTest)
			r.Put("/lab-tests/{id}", h.adminUpdateLabTest)
			r.Delete("/lab-tests/{id}", h.adminDeleteLabTest)
			r.Post("/health-packages", h.adminAddHealthPackage)
			r.Put("/health-packages/{id}", h.adminUpdateHealthPackage)
			r.Delete("/health-packages/{id}", h.adminDeleteHealthPackage)
			r.Get("/orders", h.adminGetOrders)
			r.Put("/orders/{id}/status", h.adminUpdateOrderStatus)
			r.Get("/bookings", h.adminGetBookings)
			r.Get("/prescriptions", h.adminGetPrescriptions)
			r.Put("/prescriptions/{id}/status", h.adminUpdatePrescriptionStatus)
			r.Post("/images", h.adminUploadImage)
			r.Post("/seed", h.adminSeedData)
		})
	})
}
