// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/models"
	"growth-assistant/internal/pipeline/monitor"
	"growth-assistant/internal/pipeline/scanner"
)

type mockStore struct {
	CreateUserFunc     func(ctx context.Context, user *models.User) error
	GetUserFunc        func(ctx context.Context, id string) (*models.User, error)
	GetUserByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListVendorsFunc    func(ctx context.Context) ([]models.User, error)

	CreateShopFunc        func(ctx context.Context, shop *models.Shop) error
	ListShopsByVendorFunc func(ctx context.Context, vendorID string) ([]models.Shop, error)
	CreateProductFunc     func(ctx context.Context, product *models.Product) error
	GetProductFunc        func(ctx context.Context, id string) (*models.Product, error)
	ListProductsFunc      func(ctx context.Context, vendorID string) ([]models.Product, error)

	AddCartItemFunc      func(ctx context.Context, item *models.CartItem) error
	ListCartItemsFunc    func(ctx context.Context, userID string) ([]models.CartItem, error)
	RemoveCartItemFunc   func(ctx context.Context, userID, itemID string) error
	CheckoutCartFunc     func(ctx context.Context, user *models.User) (*models.Order, error)
	ListOrdersByUserFunc func(ctx context.Context, userID string) ([]models.Order, error)

	CreateWeeklyPlanFunc          func(ctx context.Context, plan *models.WeeklyPlan) error
	ListPlansByUserFunc           func(ctx context.Context, userID string) ([]models.WeeklyPlan, error)
	CreateInvestmentFunc          func(ctx context.Context, inv *models.Investment) error
	ListInvestmentsByInvestorFunc func(ctx context.Context, investorID string) ([]models.Investment, error)

	ListNotificationsByVendorFunc func(ctx context.Context, vendorID string) ([]models.Notification, error)
	MarkNotificationReadFunc      func(ctx context.Context, vendorID, notificationID string) error
	ListNotificationLogsFunc      func(ctx context.Context, limit int) ([]models.NotificationLog, error)
}

func (m *mockStore) CreateUser(ctx context.Context, user *models.User) error {
	return m.CreateUserFunc(ctx, user)
}
func (m *mockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserFunc(ctx, id)
}
func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}
func (m *mockStore) ListVendors(ctx context.Context) ([]models.User, error) {
	return m.ListVendorsFunc(ctx)
}
func (m *mockStore) CreateShop(ctx context.Context, shop *models.Shop) error {
	return m.CreateShopFunc(ctx, shop)
}
func (m *mockStore) ListShopsByVendor(ctx context.Context, vendorID string) ([]models.Shop, error) {
	return m.ListShopsByVendorFunc(ctx, vendorID)
}
func (m *mockStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.CreateProductFunc(ctx, product)
}
func (m *mockStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return m.GetProductFunc(ctx, id)
}
func (m *mockStore) ListProducts(ctx context.Context, vendorID string) ([]models.Product, error) {
	return m.ListProductsFunc(ctx, vendorID)
}
func (m *mockStore) AddCartItem(ctx context.Context, item *models.CartItem) error {
	return m.AddCartItemFunc(ctx, item)
}
func (m *mockStore) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return m.ListCartItemsFunc(ctx, userID)
}
func (m *mockStore) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	return m.RemoveCartItemFunc(ctx, userID, itemID)
}
func (m *mockStore) CheckoutCart(ctx context.Context, user *models.User) (*models.Order, error) {
	return m.CheckoutCartFunc(ctx, user)
}
func (m *mockStore) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return m.ListOrdersByUserFunc(ctx, userID)
}
func (m *mockStore) CreateWeeklyPlan(ctx context.Context, plan *models.WeeklyPlan) error {
	return m.CreateWeeklyPlanFunc(ctx, plan)
}
func (m *mockStore) ListPlansByUser(ctx context.Context, userID string) ([]models.WeeklyPlan, error) {
	return m.ListPlansByUserFunc(ctx, userID)
}
func (m *mockStore) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	return m.CreateInvestmentFunc(ctx, inv)
}
func (m *mockStore) ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]models.Investment, error) {
	return m.ListInvestmentsByInvestorFunc(ctx, investorID)
}
func (m *mockStore) ListNotificationsByVendor(ctx context.Context, vendorID string) ([]models.Notification, error) {
	return m.ListNotificationsByVendorFunc(ctx, vendorID)
}
func (m *mockStore) MarkNotificationRead(ctx context.Context, vendorID, notificationID string) error {
	return m.MarkNotificationReadFunc(ctx, vendorID, notificationID)
}
func (m *mockStore) ListNotificationLogs(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	return m.ListNotificationLogsFunc(ctx, limit)
}

type mockScanRunner struct {
	ScanFunc func(ctx context.Context) (*scanner.Result, error)
}

func (m *mockScanRunner) Scan(ctx context.Context) (*scanner.Result, error) {
	return m.ScanFunc(ctx)
}

type mockThresholdChecker struct {
	CheckFunc func(ctx context.Context) (*monitor.Result, error)
}

func (m *mockThresholdChecker) Check(ctx context.Context) (*monitor.Result, error) {
	return m.CheckFunc(ctx)
}

func newTestServer(st Store, scan ScanRunner, mon ThresholdChecker) *Server {
	return NewServer(&ServerConfig{Host: "127.0.0.1", Port: 0}, st,
		gateway.NewWALinkSender(logger.NewNoOpLogger()), scan, mon, nil, logger.NewNoOpLogger())
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&mockStore{}, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateUser(t *testing.T) {
	t.Run("creates and hashes", func(t *testing.T) {
		var created *models.User
		st := &mockStore{
			CreateUserFunc: func(ctx context.Context, user *models.User) error {
				created = user
				return nil
			},
		}
		srv := newTestServer(st, nil, nil)

		rec := doRequest(t, srv, http.MethodPost, "/api/users", map[string]interface{}{
			"email":    "vendor@example.com",
			"password": "s3cret-pass",
			"role":     "vendor",
			"name":     "Vendor One",
			"phone":    "+62 812 3456",
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, created)
		assert.Equal(t, models.RoleVendor, created.Role)
		assert.NotEmpty(t, created.PasswordHash)
		assert.NotEqual(t, "s3cret-pass", created.PasswordHash)

		// The hash never leaks into the response.
		assert.NotContains(t, rec.Body.String(), created.PasswordHash)
	})

	t.Run("rejects bad role", func(t *testing.T) {
		srv := newTestServer(&mockStore{}, nil, nil)
		rec := doRequest(t, srv, http.MethodPost, "/api/users", map[string]interface{}{
			"email":    "x@example.com",
			"password": "s3cret-pass",
			"role":     "superadmin",
			"name":     "X",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		st := &mockStore{
			CreateUserFunc: func(ctx context.Context, user *models.User) error {
				return apperrors.NewDuplicateRecordError("email taken")
			},
		}
		srv := newTestServer(st, nil, nil)
		rec := doRequest(t, srv, http.MethodPost, "/api/users", map[string]interface{}{
			"email":    "x@example.com",
			"password": "s3cret-pass",
			"role":     "vendor",
			"name":     "X",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetUserNotFound(t *testing.T) {
	st := &mockStore{
		GetUserFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, apperrors.NewNotFoundError("user", id)
		},
	}
	srv := newTestServer(st, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUserByEmailQuery(t *testing.T) {
	st := &mockStore{
		GetUserByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "vendor@example.com", email)
			return &models.User{ID: "u1", Email: email}, nil
		},
	}
	srv := newTestServer(st, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/users?email=vendor@example.com", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)
}

func TestCheckoutEmptyCart(t *testing.T) {
	st := &mockStore{
		GetUserFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		CheckoutCartFunc: func(ctx context.Context, user *models.User) (*models.Order, error) {
			return nil, &apperrors.StandardError{Code: apperrors.ErrCodeEmptyCart, Message: "Cart is empty"}
		},
	}
	srv := newTestServer(st, nil, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/cart/u1/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_CART")
}

func TestMarkNotificationRead(t *testing.T) {
	var gotVendor, gotID string
	st := &mockStore{
		MarkNotificationReadFunc: func(ctx context.Context, vendorID, notificationID string) error {
			gotVendor, gotID = vendorID, notificationID
			return nil
		},
	}
	srv := newTestServer(st, nil, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/vendors/v1/notifications/n1/read", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", gotVendor)
	assert.Equal(t, "n1", gotID)
}

func TestSendWhatsAppEndpoint(t *testing.T) {
	srv := newTestServer(&mockStore{}, nil, nil)

	t.Run("builds link", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/notifications/whatsapp", gateway.SendRequest{
			PhoneNumber: "62812",
			Message:     "hello",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp gateway.SendResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "https://wa.me/62812?text=hello", resp.WhatsAppURL)
	})

	t.Run("rejects missing message", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/notifications/whatsapp", map[string]string{
			"phoneNumber": "62812",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAutoSendTrigger(t *testing.T) {
	scan := &mockScanRunner{
		ScanFunc: func(ctx context.Context) (*scanner.Result, error) {
			return &scanner.Result{AutoSent: 3}, nil
		},
	}
	srv := newTestServer(&mockStore{}, scan, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/admin/notifications/auto-send", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"autoSent": 3}`, rec.Body.String())
}

func TestCheckThresholdTrigger(t *testing.T) {
	phone := "62812"
	mon := &mockThresholdChecker{
		CheckFunc: func(ctx context.Context) (*monitor.Result, error) {
			return &monitor.Result{
				Threshold:         50000,
				NotificationsSent: 1,
				Vendors: []monitor.VendorResult{
					{VendorID: "v1", Revenue: 61000, Phone: &phone, Sent: true},
				},
			}, nil
		},
	}
	srv := newTestServer(&mockStore{}, nil, mon)

	rec := doRequest(t, srv, http.MethodPost, "/api/admin/revenue/check-threshold", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp monitor.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(50000), resp.Threshold)
	assert.Equal(t, 1, resp.NotificationsSent)
	require.Len(t, resp.Vendors, 1)
	assert.True(t, resp.Vendors[0].Sent)
}

func TestListNotificationLogsLimit(t *testing.T) {
	var gotLimit int
	st := &mockStore{
		ListNotificationLogsFunc: func(ctx context.Context, limit int) ([]models.NotificationLog, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	srv := newTestServer(st, nil, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/admin/notification-logs?limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)

	rec = doRequest(t, srv, http.MethodGet, "/api/admin/notification-logs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddCartItemCopiesProduct(t *testing.T) {
	st := &mockStore{
		GetProductFunc: func(ctx context.Context, id string) (*models.Product, error) {
			return &models.Product{ID: id, Name: "Kopi", Price: 25000}, nil
		},
		AddCartItemFunc: func(ctx context.Context, item *models.CartItem) error {
			assert.Equal(t, "u1", item.UserID)
			assert.Equal(t, "Kopi", item.Name)
			assert.Equal(t, float64(25000), item.Price)
			return nil
		},
	}
	srv := newTestServer(st, nil, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/cart/u1/items", map[string]interface{}{
		"productId": "p1",
		"quantity":  2,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
