// internal/api/server.go

// Package api provides the HTTP surface: the CRUD endpoints the web app
// uses, the messaging gateway endpoint, and the admin triggers for the
// two pipeline operations.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/models"
	"growth-assistant/internal/pipeline/monitor"
	"growth-assistant/internal/pipeline/scanner"
)

// Store is the persistence surface the handlers use.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListVendors(ctx context.Context) ([]models.User, error)

	CreateShop(ctx context.Context, shop *models.Shop) error
	ListShopsByVendor(ctx context.Context, vendorID string) ([]models.Shop, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, vendorID string) ([]models.Product, error)

	AddCartItem(ctx context.Context, item *models.CartItem) error
	ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, itemID string) error
	CheckoutCart(ctx context.Context, user *models.User) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)

	CreateWeeklyPlan(ctx context.Context, plan *models.WeeklyPlan) error
	ListPlansByUser(ctx context.Context, userID string) ([]models.WeeklyPlan, error)
	CreateInvestment(ctx context.Context, inv *models.Investment) error
	ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]models.Investment, error)

	ListNotificationsByVendor(ctx context.Context, vendorID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, vendorID, notificationID string) error
	ListNotificationLogs(ctx context.Context, limit int) ([]models.NotificationLog, error)
}

// ScanRunner triggers the vendor performance scan.
type ScanRunner interface {
	Scan(ctx context.Context) (*scanner.Result, error)
}

// ThresholdChecker triggers the revenue threshold check.
type ThresholdChecker interface {
	Check(ctx context.Context) (*monitor.Result, error)
}

// Pinger reports backend liveness for the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	config     *ServerConfig

	store   Store
	sender  gateway.Sender
	scanner ScanRunner
	monitor ThresholdChecker
	pingers map[string]Pinger
	logger  logger.Logger
}

func NewServer(cfg *ServerConfig, st Store, sender gateway.Sender,
	scan ScanRunner, mon ThresholdChecker, pingers map[string]Pinger, log logger.Logger) *Server {

	s := &Server{
		router:  mux.NewRouter(),
		config:  cfg,
		store:   st,
		sender:  sender,
		scanner: scan,
		monitor: mon,
		pingers: pingers,
		logger:  log,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r := s.router.PathPrefix("/api").Subrouter()

	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleGetUserByEmail).Methods(http.MethodGet).Queries("email", "{email}")
	r.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/plans", s.handleListPlans).Methods(http.MethodGet)
	r.HandleFunc("/plans", s.handleCreatePlan).Methods(http.MethodPost)

	r.HandleFunc("/shops", s.handleCreateShop).Methods(http.MethodPost)
	r.HandleFunc("/vendors/{id}/shops", s.handleListShops).Methods(http.MethodGet)
	r.HandleFunc("/vendors/{id}/notifications", s.handleListNotifications).Methods(http.MethodGet)
	r.HandleFunc("/vendors/{id}/notifications/{notificationId}/read", s.handleMarkNotificationRead).Methods(http.MethodPost)

	r.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet)

	r.HandleFunc("/cart/{userId}", s.handleListCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/{userId}/items", s.handleAddCartItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/{userId}/items/{itemId}", s.handleRemoveCartItem).Methods(http.MethodDelete)
	r.HandleFunc("/cart/{userId}/checkout", s.handleCheckout).Methods(http.MethodPost)
	r.HandleFunc("/orders/{userId}", s.handleListOrders).Methods(http.MethodGet)

	r.HandleFunc("/investments", s.handleCreateInvestment).Methods(http.MethodPost)
	r.HandleFunc("/investors/{id}/investments", s.handleListInvestments).Methods(http.MethodGet)

	r.HandleFunc("/notifications/whatsapp", s.handleSendWhatsApp).Methods(http.MethodPost)

	r.HandleFunc("/admin/notifications/auto-send", s.handleAutoSend).Methods(http.MethodPost)
	r.HandleFunc("/admin/revenue/check-threshold", s.handleCheckThreshold).Methods(http.MethodPost)
	r.HandleFunc("/admin/notification-logs", s.handleListNotificationLogs).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener fails or closes.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.pingers))
	for name, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	respondJSON(w, status, map[string]interface{}{"checks": checks})
}
