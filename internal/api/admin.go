package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"craftstore/internal/media"
	"craftstore/internal/service"
	"craftstore/internal/util"

	"github.com/gin-gonic/gin"
)

// adminListOrders handles the paginated/filtered order listing.
// Query params: page (1-based), pageSize (clamped to [1,100]), q (free-text
// substring match against order number and customer email).
func (h *Handler) adminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	page, pageSize = service.ClampPage(page, pageSize)
	query := c.Query("q")

	orders, total, err := h.orders.ListOrders(c.Request.Context(), page, pageSize, query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
		"orders":   orders,
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// adminUpdateOrderStatus sets an order's fulfillment status. The value is
// validated against the known status set.
func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.UpdateFulfillmentStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// adminListProducts returns the full catalog for the admin panel
func (h *Handler) adminListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// adminCreateProduct creates a catalog entry from a strictly typed body
func (h *Handler) adminCreateProduct(c *gin.Context) {
	var in service.ProductInput
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// adminUpdateProduct replaces a catalog entry from a strictly typed body
func (h *Handler) adminUpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var in service.ProductInput
	if err := bindStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), productID, &in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// uploadImage proxies a multipart image upload to the media host
func (h *Handler) uploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.media.Upload(c.Request.Context(), file)
	if err != nil {
		util.UploadsTotal.WithLabelValues("upload", "error").Inc()
		h.respondError(c, err)
		return
	}

	util.UploadsTotal.WithLabelValues("upload", "ok").Inc()
	c.JSON(http.StatusOK, result)
}

type deleteImageRequest struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// deleteImage removes an image by public id, or by URL with a best-effort
// public-id derivation.
func (h *Handler) deleteImage(c *gin.Context) {
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	targetID := req.PublicID
	if targetID == "" && req.URL != "" {
		targetID = media.PublicIDFromURL(req.URL)
	}
	if targetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "public_id or url required"})
		return
	}

	if err := h.media.Delete(c.Request.Context(), targetID); err != nil {
		util.UploadsTotal.WithLabelValues("delete", "error").Inc()
		h.respondError(c, err)
		return
	}

	util.UploadsTotal.WithLabelValues("delete", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// bindStrict decodes a JSON body rejecting unknown fields, so arbitrary
// shapes are stopped at the boundary instead of passed through untyped.
func bindStrict(c *gin.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
