// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"growth-assistant/internal/common/validation"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/models"
)

// validateAndDecode runs schema validation on the raw body, then decodes
// it into v. Returns false after writing the error response.
func validateAndDecode(w http.ResponseWriter, r *http.Request, schema string, v interface{}) bool {
	body, err := readBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Unreadable request body")
		return false
	}

	result, err := validation.ValidateJSON(schema, body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Request body is not valid JSON")
		return false
	}
	if !result.Valid {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", result.ErrorString())
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Request body does not match the expected shape")
		return false
	}
	return true
}

// ---- users ----

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	BusinessType string `json:"businessType"`
	Phone        string `json:"phone"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !validateAndDecode(w, r, createUserSchema, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal server error occurred")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.Role(req.Role),
		Name:         req.Name,
		BusinessType: req.BusinessType,
		Phone:        req.Phone,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ---- shops and products ----

func (s *Server) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	var shop models.Shop
	if !validateAndDecode(w, r, createShopSchema, &shop) {
		return
	}
	if err := s.store.CreateShop(r.Context(), &shop); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, shop)
}

func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := s.store.ListShopsByVendor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shops)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !validateAndDecode(w, r, createProductSchema, &product) {
		return
	}
	if err := s.store.CreateProduct(r.Context(), &product); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.store.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context(), r.URL.Query().Get("vendorId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// ---- cart and orders ----

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !validateAndDecode(w, r, addCartItemSchema, &req) {
		return
	}

	product, err := s.store.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	item := &models.CartItem{
		UserID:    mux.Vars(r)["userId"],
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  req.Quantity,
		Price:     product.Price,
	}
	if err := s.store.AddCartItem(r.Context(), item); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListCartItems(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.RemoveCartItem(r.Context(), vars["userId"], vars["itemId"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respondStoreError(w, err)
		return
	}

	order, err := s.store.CheckoutCart(r.Context(), user)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrdersByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// ---- plans and investments ----

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.WeeklyPlan
	if !validateAndDecode(w, r, createPlanSchema, &plan) {
		return
	}
	if err := s.store.CreateWeeklyPlan(r.Context(), &plan); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlansByUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var inv models.Investment
	if !validateAndDecode(w, r, createInvestmentSchema, &inv) {
		return
	}
	if err := s.store.CreateInvestment(r.Context(), &inv); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := s.store.ListInvestmentsByInvestor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invs)
}

// ---- notifications ----

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.store.ListNotificationsByVendor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.MarkNotificationRead(r.Context(), vars["id"], vars["notificationId"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (s *Server) handleListNotificationLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	logs, err := s.store.ListNotificationLogs(r.Context(), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// ---- messaging gateway ----

func (s *Server) handleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req gateway.SendRequest
	if !validateAndDecode(w, r, sendWhatsAppSchema, &req) {
		return
	}

	resp, err := s.sender.Send(r.Context(), &req)
	if err != nil {
		// Backends report delivery problems in the response; an error
		// here is a programming or context failure.
		respondError(w, http.StatusInternalServerError, "NOTIFICATION_SEND_FAILED", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ---- pipeline triggers ----

func (s *Server) handleAutoSend(w http.ResponseWriter, r *http.Request) {
	result, err := s.scanner.Scan(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckThreshold(w http.ResponseWriter, r *http.Request) {
	result, err := s.monitor.Check(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
