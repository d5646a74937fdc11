package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/logging"
	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/mykafka"
	"github.com/luxe-shop/backend/internal/service/token"
	"github.com/luxe-shop/backend/internal/util"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// legalTransitions is the admin-driven status graph. The terminal
// states delivered and cancelled have no outgoing edges.
var legalTransitions = map[string][]string{
	models.OrderStatusPendingPayment: {models.OrderStatusPaid, models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusPaid:           {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing:     {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:        {models.OrderStatusDelivered},
	models.OrderStatusDelivered:      {},
	models.OrderStatusCancelled:      {},
}

func transitionAllowed(from, to string) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func knownStatus(s string) bool {
	_, ok := legalTransitions[s]
	return ok
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), 20)
	offset, limit := util.Calculate(page, size)

	var orders []models.Order
	if err := h.DB.Preload("Items").Preload("Address").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Preload("Items").Preload("Address").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHandler) AdminListOrders(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), 20)
	offset, limit := util.Calculate(page, size)

	var orders []models.Order
	if err := h.DB.Preload("Items").Preload("Address").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

func (h *OrderHandler) AdminGetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Preload("Items").Preload("Address").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// AdminUpdateStatus moves an order along the status graph. Rejecting
// off-graph writes is stricter than the historical free-form update.
func (h *OrderHandler) AdminUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_update_status")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	if !knownStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status: "+req.Status)
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !transitionAllowed(order.Status, req.Status) {
		l.Warn("status_transition_rejected", "order_id", order.ID, "from", order.Status, "to", req.Status)
		return echo.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}

	if err := h.DB.Model(&order).UpdateColumn("status", req.Status).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	order.Status = req.Status

	h.publish(c, map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"status":  order.Status,
	})

	l.Info("status_updated", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
