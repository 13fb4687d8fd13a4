package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JastiRaja/parnika-backend/internal/config"
	"github.com/JastiRaja/parnika-backend/internal/database"
	"github.com/JastiRaja/parnika-backend/internal/handlers"
	"github.com/JastiRaja/parnika-backend/internal/models"
	"github.com/JastiRaja/parnika-backend/internal/routes"
	"github.com/JastiRaja/parnika-backend/internal/utils"
)

const testPassword = "secret123"

// env is a fully wired application backed by an in-memory database.
type env struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()

	// A named shared-cache DSN keeps the in-memory database alive across
	// pooled connections while isolating it from other tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppPort:       "8080",
		JWTSecret:     "test-secret",
		TokenExpires:  time.Hour,
		UploadDir:     t.TempDir(),
		PublicBaseURL: "http://localhost:8080",
		CORSOrigins:   "*",
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(app, db, cfg)

	return &env{app: app, db: db, cfg: cfg}
}

// createUser inserts an account directly and returns it with a valid token.
func (e *env) createUser(t *testing.T, name, email, role string) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, user.Role, time.Hour)
	require.NoError(t, err)

	return user, token
}

func (e *env) createProduct(t *testing.T, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

// request performs an HTTP call against the app. A nil body sends no payload,
// an empty token sends no Authorization header.
func (e *env) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

// envelope is the generic response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type orderEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

type orderListEnvelope struct {
	Success    bool           `json:"success"`
	Orders     []models.Order `json:"orders"`
	Pagination struct {
		CurrentPage  int   `json:"current_page"`
		ItemsPerPage int   `json:"items_per_page"`
		TotalItems   int64 `json:"total_items"`
	} `json:"pagination"`
}

// shippingAddress returns a valid address payload.
func shippingAddress() map[string]interface{} {
	return map[string]interface{}{
		"full_name":     "Asha Rao",
		"address_line1": "12 MG Road",
		"city":          "Hyderabad",
		"state":         "Telangana",
		"postal_code":   "500081",
		"phone":         "9876543210",
	}
}

// orderPayload builds a create-order body for the given items.
func orderPayload(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"items":            items,
		"shipping_address": shippingAddress(),
		"payment_method":   "cod",
	}
}

func orderItem(productID uuid.UUID, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   quantity,
	}
}

// placeOrder submits a valid order and requires it to succeed.
func (e *env) placeOrder(t *testing.T, token string, items ...map[string]interface{}) models.Order {
	t.Helper()

	resp := e.request(t, http.MethodPost, "/api/orders", token, orderPayload(items...))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out orderEnvelope
	decodeBody(t, resp, &out)
	require.True(t, out.Success)
	return out.Order
}

// productStock reloads the product row and returns its stock.
func (e *env) productStock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, e.db.First(&product, "id = ?", id).Error)
	return product.Stock
}

// orderStatus reloads the order row and returns its status.
func (e *env) orderStatus(t *testing.T, id uuid.UUID) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, e.db.First(&order, "id = ?", id).Error)
	return order.Status
}
