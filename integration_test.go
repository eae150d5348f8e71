package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/config"
	"github.com/platoo/order-service/database"
	"github.com/platoo/order-service/models"
	"github.com/platoo/order-service/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "integration-secret"

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func openServiceDB(t *testing.T, mode string) (*gorm.DB, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Mode = mode
	cfg.JWTSecret = testSecret
	cfg.DBDSN = fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", t.Name(), mode)

	db, err := config.InitDB(&cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db, mode))
	return db, &cfg
}

// startServices runs the menu service behind an httptest server and returns
// the order service handler pointed at it.
func startServices(t *testing.T) http.Handler {
	t.Helper()
	menuDB, menuCfg := openServiceDB(t, config.ModeMenu)
	require.NoError(t, menuDB.Create(&[]models.Menu{
		{Name: "Margherita", Price: 10.5, IsAvailable: true},
		{Name: "Cola", Price: 2.25, IsAvailable: true},
	}).Error)

	menuHandler, err := buildHandler(menuDB, menuCfg)
	require.NoError(t, err)
	menuServer := httptest.NewServer(menuHandler)
	t.Cleanup(menuServer.Close)

	orderDB, orderCfg := openServiceDB(t, config.ModeOrders)
	orderCfg.CatalogBaseURL = menuServer.URL + "/api"
	orderCfg.CatalogLookupTimeout = 2 * time.Second

	orderHandler, err := buildHandler(orderDB, orderCfg)
	require.NoError(t, err)
	return orderHandler
}

func send(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken([]byte(testSecret), userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestEndToEndOrderFlow(t *testing.T) {
	h := startServices(t)

	// Item 999 does not exist in the catalog and is left out.
	w := send(h, http.MethodPost, "/orders", "", map[string]interface{}{
		"user_id": "u-42",
		"items": []map[string]interface{}{
			{"menu_item_id": "1", "quantity": 2},
			{"menu_item_id": "2", "quantity": 1},
			{"menu_item_id": "999", "quantity": 5},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Status bool         `json:"status"`
		Data   models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Status)
	assert.Equal(t, "ORD001", created.Data.OrderNumber)
	assert.Equal(t, 23.25, created.Data.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, created.Data.Status)
	require.Len(t, created.Data.Items, 2)
	assert.Equal(t, 10.5, created.Data.Items[0].Price)
	assert.Equal(t, 2.25, created.Data.Items[1].Price)

	orderPath := fmt.Sprintf("/orders/%d", created.Data.ID)
	w = send(h, http.MethodGet, orderPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(h, http.MethodGet, orderPath, token(t, "u-42", utils.RoleCustomer), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(h, http.MethodGet, orderPath, token(t, "u-7", utils.RoleCustomer), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(h, http.MethodGet, orderPath, token(t, "kitchen-1", utils.RoleRestaurant), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(h, http.MethodGet, "/users/u-42/orders", token(t, "u-42", utils.RoleCustomer), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(h, http.MethodGet, "/users/u-42/orders", token(t, "u-7", utils.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	statusPath := fmt.Sprintf("/admin/orders/%d/status", created.Data.ID)
	w = send(h, http.MethodPatch, statusPath, "", map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(h, http.MethodPatch, statusPath, token(t, "u-42", utils.RoleCustomer), map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(h, http.MethodPatch, statusPath, token(t, "kitchen-1", utils.RoleRestaurant), map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(h, http.MethodGet, "/admin/orders?status=preparing", token(t, "admin-1", utils.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.Data.ID, list.Data[0].ID)

	w = send(h, http.MethodDelete, fmt.Sprintf("/admin/orders/%d", created.Data.ID), token(t, "kitchen-1", utils.RoleRestaurant), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEndToEndNoValidItems(t *testing.T) {
	h := startServices(t)

	w := send(h, http.MethodPost, "/orders", "", map[string]interface{}{
		"user_id": "u-1",
		"items":   []map[string]interface{}{{"menu_item_id": "404", "quantity": 1}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no valid menu items found for the order")

	w = send(h, http.MethodGet, "/users/u-1/orders", token(t, "u-1", utils.RoleCustomer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Data)
}

func TestEndToEndHealth(t *testing.T) {
	h := startServices(t)

	w := send(h, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
