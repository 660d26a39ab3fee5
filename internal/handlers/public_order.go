package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/middleware"
	"foodorder/internal/models"
	"foodorder/internal/orders"
)

// OrderService is the order workflow the HTTP surface drives.
type OrderService interface {
	Create(ctx context.Context, who orders.Identity, req orders.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, f orders.ListFilter) ([]models.OrderWithUser, error)
	Update(ctx context.Context, id primitive.ObjectID, req orders.UpdateOrderRequest) (*models.Order, error)
	CheckCode(ctx context.Context, userID primitive.ObjectID, code string) error
	OrderStatistics(ctx context.Context, f orders.StatisticsFilter) (*orders.OrderStatistics, error)
	InactiveUsers(ctx context.Context, start, end string) ([]models.User, error)
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		caller, ok := middleware.CallerFrom(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req orders.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		who := orders.Identity{UserID: caller.UserID, Email: caller.Email, Name: caller.Name}
		order, err := svc.Create(c.Request.Context(), who, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

/* =========================
   LIST / GET ORDERS
========================= */

func GetOrders(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		caller, ok := middleware.CallerFrom(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		userID, err := optionalObjectID(c.Query("user_id"), "user_id")
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		// customers only ever see their own orders
		if !caller.IsAdmin() {
			userID = &caller.UserID
		}
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		result, err := svc.List(c.Request.Context(), orders.ListFilter{
			UserID:      userID,
			Status:      c.Query("status"),
			OrderType:   c.Query("order_type"),
			PaymentType: c.Query("payment_type"),
			PanelType:   c.Query("panel_type"),
			Date:        c.Query("date"),
			Page:        page,
			Limit:       limit,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		if len(result) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func GetOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:order_id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("order_id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		caller, ok := middleware.CallerFrom(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		order, err := svc.Get(c.Request.Context(), orderID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		if !caller.IsAdmin() && order.UserID != caller.UserID {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   DISCOUNT CODE CHECK
========================= */

func CheckDiscountCode(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/discount-code-check"
		defer handlePanic(c, route)

		code := c.Query("code")
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "code is required")
			return
		}

		userID, err := optionalObjectID(c.Query("user_id"), "user_id")
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		if userID == nil {
			caller, ok := middleware.CallerFrom(c)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "user_id is required")
				return
			}
			userID = &caller.UserID
		}

		if err := svc.CheckCode(c.Request.Context(), *userID, code); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{})
	}
}
