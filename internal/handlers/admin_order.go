package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/orders"
)

/* =========================
   UPDATE ORDER STATUS
========================= */

func UpdateOrder(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:order_id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("order_id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		var req orders.UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := svc.Update(c.Request.Context(), orderID, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   REPORTS
========================= */

func OrderStatistics(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/statistics"
		defer handlePanic(c, route)

		itemID, err := optionalObjectID(c.Query("item_id"), "item_id")
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		categoryID, err := optionalObjectID(c.Query("category_id"), "category_id")
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		stats, err := svc.OrderStatistics(c.Request.Context(), orders.StatisticsFilter{
			StartDate:  c.Query("start_date"),
			EndDate:    c.Query("end_date"),
			OrderType:  c.Query("order_type"),
			Status:     c.Query("status"),
			ItemID:     itemID,
			CategoryID: categoryID,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func UserStatistics(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/user-statistics"
		defer handlePanic(c, route)

		users, err := svc.InactiveUsers(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		if len(users) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, users)
	}
}
