package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"craftstore/internal/auth"
	"craftstore/internal/media"
	"craftstore/internal/service"
	"craftstore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog  *service.CatalogService
	orders   *service.OrderService
	payments *service.PaymentService
	media    *media.Client
	authz    *auth.Middleware
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. media may be nil when the media host
// is not configured; upload routes are then not registered.
func NewHandler(
	catalog *service.CatalogService,
	orders *service.OrderService,
	payments *service.PaymentService,
	mediaClient *media.Client,
	authz *auth.Middleware,
) *Handler {
	return &Handler{
		catalog:  catalog,
		orders:   orders,
		payments: payments,
		media:    mediaClient,
		authz:    authz,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:slug", h.getProduct)
		api.POST("/orders", h.createOrder)
		api.GET("/orders/:id", h.getOrder)
		api.POST("/create-payment-intent", h.createPaymentIntent)
		api.GET("/payment-intent/:id", h.getPaymentIntent)
		api.POST("/webhook", h.handleWebhook)
	}

	admin := api.Group("/admin", h.authz.RequireAdmin())
	{
		admin.GET("/orders", h.adminListOrders)
		admin.PUT("/orders/:id/status", h.adminUpdateOrderStatus)
		admin.GET("/products", h.adminListProducts)
		admin.POST("/products", h.adminCreateProduct)
		admin.PUT("/products/:id", h.adminUpdateProduct)
	}

	if h.media != nil {
		upload := api.Group("/upload", h.authz.RequireAdmin())
		upload.POST("/image", h.uploadImage)
		upload.DELETE("/image", h.deleteImage)
	} else {
		h.logger.Warn("Media host not configured; upload routes disabled")
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts handles the public catalog listing
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct handles a catalog read by slug
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

type createPaymentIntentRequest struct {
	Items    []service.ItemRequest `json:"items"`
	Metadata map[string]string     `json:"metadata,omitempty"`
	Currency string                `json:"currency,omitempty"`
}

// createPaymentIntent handles payment intent creation. The amount is always
// recomputed server-side from the requested items.
func (h *Handler) createPaymentIntent(c *gin.Context) {
	var req createPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.payments.CreatePaymentIntent(c.Request.Context(), req.Items, req.Metadata, req.Currency)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getPaymentIntent handles a transaction summary read
func (h *Handler) getPaymentIntent(c *gin.Context) {
	summary, err := h.payments.GetPaymentIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleWebhook consumes the gateway notification as raw bytes; signature
// verification requires the exact wire payload, not re-serialized JSON.
func (h *Handler) handleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := h.payments.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// respondError maps the service error taxonomy onto HTTP status codes.
// Upstream detail is logged, never exposed.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGatewayDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment gateway not configured"})
	default:
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
