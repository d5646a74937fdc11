package wishlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/service/token"
)

type WishlistHandler struct {
	DB *gorm.DB
}

type entry struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	InStock     bool     `json:"in_stock"`
}

func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var items []models.WishlistItem
	if err := h.DB.Preload("Product.Images").Preload("Product.Inventory").
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	wishlist := make([]entry, 0, len(items))
	for _, w := range items {
		if w.Product == nil {
			continue
		}
		e := entry{
			ID:          w.Product.ID,
			Name:        w.Product.Name,
			Price:       w.Product.Price.StringFixed(2),
			Description: w.Product.Description,
			Images:      make([]string, 0, len(w.Product.Images)),
		}
		for _, img := range w.Product.Images {
			e.Images = append(e.Images, img.URL)
		}
		if w.Product.Inventory != nil {
			e.InStock = w.Product.Inventory.StockCount > 0
		}
		wishlist = append(wishlist, e)
	}

	return c.JSON(http.StatusOK, echo.Map{"wishlist": wishlist})
}

// AddToWishlist is idempotent: adding a product already on the list is
// not an error.
func (h *WishlistHandler) AddToWishlist(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var existing models.WishlistItem
	err = h.DB.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "already in wishlist"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item := models.WishlistItem{UserID: userID, ProductID: product.ID}
	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "added to wishlist"})
}

func (h *WishlistHandler) RemoveFromWishlist(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
