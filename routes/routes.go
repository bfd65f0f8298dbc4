package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/controllers"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/middleware"
)

func RegisterRoutes(r *gin.Engine, oc *controllers.OrderController, pc *controllers.PaymentController) {
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())

	authed.POST("/checkout", oc.Checkout)
	authed.GET("/orders", oc.GetOrders)
	authed.GET("/orders/:id", oc.GetOrderByID)

	admin := authed.Group("/admin")
	admin.GET("/orders", oc.GetAllOrders)
	admin.PATCH("/orders/:id/status", oc.UpdateOrderStatus)

	payments := authed.Group("/payments")
	payments.POST("/order/:orderId", pc.CreateOrderPayment)
	payments.POST("/refund/:orderId", pc.RefundPayment)
	payments.GET("/status/:orderId", pc.GetPaymentStatus)

	// Gateway callbacks authenticate via their signature, not a session.
	r.POST("/payments/verify", pc.VerifyPayment)
	r.POST("/payments/failure", pc.PaymentFailure)
}
