package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"craftstore/internal/models"
	"craftstore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderStore struct{}

func (stubOrderStore) CreateOrder(context.Context, *models.Order) error { return nil }
func (stubOrderStore) GetOrderByID(context.Context, int64) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrderStore) GetOrderByPaymentIntentID(context.Context, string) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrderStore) UpdatePaymentStatus(context.Context, int64, string, string) error { return nil }
func (stubOrderStore) UpdateFulfillmentStatus(context.Context, int64, string) error     { return nil }
func (stubOrderStore) ListOrders(context.Context, int, int, string) ([]models.Order, int, error) {
	return []models.Order{}, 0, nil
}

func TestAdminListOrdersEchoesClampedPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	orders := service.NewOrderService(stubOrderStore{}, service.NewPriceResolver(nil), nil)
	h := NewHandler(nil, orders, nil, nil, nil)

	router := gin.New()
	router.GET("/api/admin/orders", h.adminListOrders)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?page=0&pageSize=500", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
		Total    int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 100, body.PageSize)
}
