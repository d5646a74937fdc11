package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/mykafka"
	"github.com/luxe-shop/backend/internal/service/token"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// getOrCreateCart returns the user's cart row, creating it lazily on
// first use.
func (h *CartHandler) getOrCreateCart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := h.DB.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cart = models.Cart{UserID: userID}
	if err := h.DB.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var cart models.Cart
	if err := h.DB.Preload("Items.Product.Images").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"items": []models.CartItem{}})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"items": cart.Items})
}

func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if req.Quantity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Merge-add: one atomic increment, the captured price stays as it
	// was when the line was first created.
	res := h.DB.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity))
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected > 0 {
		var item models.CartItem
		if err := h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, map[string]any{
			"type":      "cart_item_added",
			"userID":    userID,
			"productID": product.ID,
			"quantity":  item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}

	newItem := models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  uint(req.Quantity),
		Price:     product.Price,
	}
	if err := h.DB.Create(&newItem).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": product.ID,
		"quantity":  newItem.Quantity,
	})
	return c.JSON(http.StatusCreated, newItem)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	item, httpErr := h.ownedItem(userID, uint(id))
	if httpErr != nil {
		return httpErr
	}

	if err := h.DB.Model(item).UpdateColumn("quantity", req.Quantity).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	item.Quantity = uint(req.Quantity)

	h.publish(c, map[string]any{
		"type":     "cart_item_updated",
		"userID":   userID,
		"itemID":   item.ID,
		"quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, httpErr := h.ownedItem(userID, uint(id))
	if httpErr != nil {
		return httpErr
	}

	if err := h.DB.Delete(item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "cart_item_removed",
		"userID": userID,
		"itemID": item.ID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var cart models.Cart
	if err := h.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
}

// ownedItem loads a cart line and checks it belongs to the caller's
// cart. Foreign rows surface as 404, not 403.
func (h *CartHandler) ownedItem(userID, itemID uint) (*models.CartItem, error) {
	var cart models.Cart
	if err := h.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &item, nil
}
