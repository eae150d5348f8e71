package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/middlewares"
	"github.com/platoo/order-service/models"
	"github.com/platoo/order-service/services"
	"github.com/platoo/order-service/utils"
)

var (
	errInvalidOrderID = errors.New("invalid order id")
	errForeignOrders  = errors.New("orders of another user")
)

type OrderController struct {
	Service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{Service: service}
}

type createOrderRequest struct {
	UserID string                   `json:"user_id" binding:"required"`
	Items  []models.LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder -> POST /orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body createOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidOrderRequest)
		return
	}
	if strings.TrimSpace(body.UserID) == "" {
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidOrderRequest)
		return
	}

	order, err := oc.Service.CreateOrder(c.Request.Context(), body.UserID, body.Items)
	if err != nil {
		var creationErr *services.OrderCreationError
		if errors.As(err, &creationErr) {
			utils.RespondJSON(c, http.StatusInternalServerError, "Error creating order", gin.H{
				"error": creationErr.Cause.Error(),
			})
			return
		}
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> GET /orders/:order_id
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := oc.Service.GetOrder(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}
	// Other customers' orders look the same as missing ones.
	if !mayReadOrdersOf(c, order.UserID) {
		utils.RespondError(c, http.StatusNotFound, services.ErrOrderNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetUserOrders -> GET /users/:user_id/orders
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if !mayReadOrdersOf(c, userID) {
		utils.RespondError(c, http.StatusForbidden, errForeignOrders)
		return
	}

	orders, err := oc.Service.ListOrders(c.Request.Context(), models.OrderFilter{UserID: userID})
	if err != nil {
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User orders", orders)
}

// GetAllOrders -> GET /admin/orders?user_id=&status=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Service.ListOrders(c.Request.Context(), models.OrderFilter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Status: models.OrderStatus(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> PATCH /admin/orders/:order_id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.UpdateOrderStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// DeleteOrder -> DELETE /admin/orders/:order_id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := oc.Service.DeleteOrder(c.Request.Context(), id); err != nil {
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", nil)
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errInvalidOrderID)
		return 0, false
	}
	return uint(id), true
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidOrderRequest), errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStatusTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// mayReadOrdersOf reports whether the authenticated caller may see userID's
// orders: their own, or anyone's for admin and restaurant staff.
func mayReadOrdersOf(c *gin.Context, userID string) bool {
	switch c.GetString(middlewares.ContextRole) {
	case utils.RoleAdmin, utils.RoleRestaurant:
		return true
	}
	caller := c.GetString(middlewares.ContextUserID)
	return caller != "" && caller == userID
}
