package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/middleware"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/services"
)

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// CreateOrderPayment opens a gateway payment intent for an order.
func (pc *PaymentController) CreateOrderPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format", "kind": services.KindValidation})
		return
	}

	resp, serviceErr := pc.paymentService.CreateOrderPayment(c.Request.Context(), orderID, userID)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyPayment handles the signed success callback from the gateway.
// The signature is the authentication; there is no user session here.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	resp, serviceErr := pc.paymentService.VerifyPayment(c.Request.Context(), &req)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PaymentFailure records a failed payment attempt reported by the gateway.
func (pc *PaymentController) PaymentFailure(c *gin.Context) {
	var req models.PaymentFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
		return
	}

	resp, serviceErr := pc.paymentService.HandlePaymentFailure(c.Request.Context(), req.GatewayOrderID, req.Reason)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RefundPayment refunds a paid order, full amount unless one is given.
func (pc *PaymentController) RefundPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format", "kind": services.KindValidation})
		return
	}

	var req models.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "kind": services.KindValidation, "details": err.Error()})
			return
		}
	}

	resp, serviceErr := pc.paymentService.RefundPayment(c.Request.Context(), orderID, userID, req.Amount)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPaymentStatus is the read-only payment projection for an order.
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format", "kind": services.KindValidation})
		return
	}

	resp, serviceErr := pc.paymentService.GetPaymentStatus(c.Request.Context(), orderID, userID)
	if serviceErr != nil {
		respondServiceError(c, serviceErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}
