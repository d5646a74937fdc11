package inventory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
)

// ErrInsufficientStock is returned when a reservation would drive the
// stock count negative.
var ErrInsufficientStock = errors.New("insufficient stock")

func Get(db *gorm.DB, productID uint) (*models.Inventory, error) {
	var inv models.Inventory
	if err := db.Where("product_id = ?", productID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Reserve decrements stock by quantity only when enough is available,
// as a single conditional UPDATE. Two concurrent checkouts over the
// same borderline stock cannot both succeed: the row count tells the
// loser apart.
func Reserve(db *gorm.DB, productID uint, quantity uint) error {
	res := db.Model(&models.Inventory{}).
		Where("product_id = ? AND stock_count >= ?", productID, quantity).
		UpdateColumn("stock_count", gorm.Expr("stock_count - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// SetStock writes an absolute stock count, creating the inventory row
// if the product has none yet. Admin-only path.
func SetStock(db *gorm.DB, productID uint, stock int) (*models.Inventory, error) {
	var inv models.Inventory
	err := db.Where("product_id = ?", productID).First(&inv).Error
	switch {
	case err == nil:
		if err := db.Model(&inv).UpdateColumn("stock_count", stock).Error; err != nil {
			return nil, err
		}
		inv.StockCount = stock
		return &inv, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		inv = models.Inventory{ProductID: productID, StockCount: stock}
		if err := db.Create(&inv).Error; err != nil {
			return nil, err
		}
		return &inv, nil
	default:
		return nil, err
	}
}
