package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/logging"
	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/mykafka"
	"github.com/luxe-shop/backend/internal/service/inventory"
	"github.com/luxe-shop/backend/internal/service/token"
)

type CheckoutHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// statusFor derives the initial order status from the payment method.
// Placeholder for a real gateway integration: no call, no verification.
func statusFor(paymentMethod string) string {
	switch paymentMethod {
	case "cod":
		return models.OrderStatusPendingPayment
	case "card":
		return models.OrderStatusPaid
	default:
		return models.OrderStatusProcessing
	}
}

// Checkout converts the caller's cart into an order. Order creation,
// the per-line conditional stock decrements and the cart clear all run
// in one transaction, so a failure on any line leaves no writes behind.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		AddressID     int    `json:"address_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.AddressID <= 0 || req.PaymentMethod == "" {
		l.Warn("checkout_error", "status", 400, "reason", "missing_fields")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing address or payment method"})
	}

	var order models.Order

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", req.AddressID, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "address not found")
			}
			return err
		}

		var cart models.Cart
		if err := tx.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
			}
			return err
		}
		if len(cart.Items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
		}

		// Total from the snapshotted line prices, never re-read from
		// the live catalog.
		total := decimal.Zero
		for _, it := range cart.Items {
			total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		order = models.Order{
			Reference:     uuid.New(),
			UserID:        userID,
			AddressID:     address.ID,
			TotalPrice:    total,
			PaymentMethod: req.PaymentMethod,
			Status:        statusFor(req.PaymentMethod),
			CreatedAt:     time.Now(),
		}
		for _, it := range cart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range cart.Items {
			if err := inventory.Reserve(tx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					name := fmt.Sprintf("product %d", it.ProductID)
					if it.Product != nil {
						name = it.Product.Name
					}
					return echo.NewHTTPError(http.StatusBadRequest,
						fmt.Sprintf("Not enough stock for %s", name))
				}
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			l.Warn("checkout_failed", "status", he.Code, "reason", he.Message)
			return c.JSON(he.Code, echo.Map{"message": fmt.Sprint(he.Message)})
		}
		l.Error("checkout_failed", "status", 500, "error", txErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Checkout failed"})
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.TotalPrice,
	})

	l.Info("checkout_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Order placed successfully!",
		"order_id": order.ID,
		"order":    order,
	})
}

func (h *CheckoutHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
