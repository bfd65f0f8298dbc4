package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/middleware"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/services"
)

type OrderController struct {
	checkoutService services.CheckoutService
}

func NewOrderController(checkoutService services.CheckoutService) *OrderController {
	return &OrderController{checkoutService: checkoutService}
}

// Checkout handles POST /checkout.
func (oc *OrderController) Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	resp, serviceErr := oc.checkoutService.Checkout(c.Request.Context(), userID, &req)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetOrders returns paginated orders for the authenticated user.
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)

	result, serviceErr := oc.checkoutService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order with its status timeline.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format", "kind": services.KindValidation})
		return
	}

	result, serviceErr := oc.checkoutService.GetOrderByID(c.Request.Context(), userID, orderID)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAllOrders returns paginated orders for all users (admin only).
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	if _, err := middleware.GetUserID(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	page, limit := parsePaginationParams(c)

	result, serviceErr := oc.checkoutService.GetAllOrders(c.Request.Context(), page, limit)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateOrderStatus applies an operator transition (admin only).
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format", "kind": services.KindValidation})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	if serviceErr := oc.checkoutService.UpdateOrderStatus(c.Request.Context(), orderID, &req, actorID); serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

func respondServiceError(c *gin.Context, serviceErr *services.ServiceError) {
	c.JSON(serviceErr.StatusCode, gin.H{"error": serviceErr.Message, "kind": serviceErr.Kind})
}

// parsePaginationParams extracts and validates pagination parameters.
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100

	page := 1
	limit := 10

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	return page, limit
}
