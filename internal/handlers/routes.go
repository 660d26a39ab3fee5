package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"foodorder/internal/middleware"
)

type Dependencies struct {
	Orders         OrderService
	Gateways       GatewayStore
	Users          UserDirectory
	DB             Pinger
	JWTSecret      string
	AccessTokenTTL time.Duration
}

// Register mounts the API on r.
func Register(r gin.IRouter, d Dependencies) {
	userAuth := middleware.UserAuth(d.JWTSecret)
	adminAuth := middleware.AdminAuth(d.JWTSecret)
	optionalAuth := middleware.OptionalAuth(d.JWTSecret)

	r.GET("/healthz", Health(d.DB))
	r.POST("/auth/login", Login(d.Users, d.JWTSecret, d.AccessTokenTTL))
	r.GET("/auth/me", userAuth, GetMe(d.Users))

	orders := r.Group("/orders")
	{
		orders.POST("", userAuth, CreateOrder(d.Orders))
		orders.GET("", userAuth, GetOrders(d.Orders))
		orders.GET("/discount-code-check", optionalAuth, CheckDiscountCode(d.Orders))
		orders.GET("/statistics", adminAuth, OrderStatistics(d.Orders))
		orders.GET("/user-statistics", adminAuth, UserStatistics(d.Orders))
		orders.GET("/:order_id", userAuth, GetOrder(d.Orders))
		orders.PUT("/:order_id", adminAuth, UpdateOrder(d.Orders))
		orders.PATCH("/:order_id", adminAuth, UpdateOrder(d.Orders))
	}

	gateways := r.Group("/payment-gateways")
	gateways.Use(adminAuth)
	{
		gateways.GET("", GetPaymentGateways(d.Gateways))
		gateways.POST("", CreatePaymentGateway(d.Gateways))
		gateways.GET("/active", GetActivePaymentGateway(d.Gateways))
		gateways.PUT("/:id/activate", ActivatePaymentGateway(d.Gateways))
	}
}
