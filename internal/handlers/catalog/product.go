package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/cache"
	"github.com/luxe-shop/backend/internal/es"
	"github.com/luxe-shop/backend/internal/logging"
	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/mykafka"
	"github.com/luxe-shop/backend/internal/service/inventory"
	"github.com/luxe-shop/backend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Cache    *cache.ProductCache
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), 20)
	offset, limit := util.Calculate(page, size)

	var products []models.Product
	q := h.DB.Preload("Images").Preload("Inventory").Order("id ASC").Limit(limit).Offset(offset)
	if category := c.QueryParam("category"); category != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", category)
	}
	if err := q.Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	if p, ok := h.Cache.Get(ctx, uint(id)); ok {
		return c.JSON(http.StatusOK, echo.Map{"product": p})
	}

	var product models.Product
	if err := h.DB.Preload("Images").Preload("Inventory").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Cache.Set(ctx, &product)
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// Recommendations returns up to four other products from the same
// category.
func (h *ProductHandler) Recommendations(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var recs []models.Product
	q := h.DB.Preload("Images").Preload("Inventory").Where("id <> ?", product.ID).Limit(4)
	if product.CategoryID != nil {
		q = q.Where("category_id = ?", *product.CategoryID)
	}
	if err := q.Find(&recs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"recommendations": recs})
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *string  `json:"price"`
	CategoryID  *uint    `json:"category_id"`
	Images      []string `json:"images"`
	Stock       *int     `json:"stock"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_create")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Price == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name and price are required")
	}
	price, err := decimal.NewFromString(*req.Price)
	if err != nil || price.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		CategoryID:  req.CategoryID,
	}

	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for _, url := range req.Images {
			if err := tx.Create(&models.ProductImage{ProductID: product.ID, URL: url}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.Inventory{ProductID: product.ID, StockCount: stock}).Error
	})
	if txErr != nil {
		l.Error("product_create_failed", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var created models.Product
	if err := h.DB.Preload("Images").Preload("Inventory").First(&created, product.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.indexProduct(c, &created)
	h.publish(c, map[string]any{"type": "product_created", "productID": created.ID})

	l.Info("product_created", "product_id", created.ID)
	return c.JSON(http.StatusCreated, echo.Map{"product": created})
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		product.Price = price
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}

	if err := h.DB.Save(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), product.ID)
	h.indexProduct(c, &product)
	h.publish(c, map[string]any{"type": "product_updated", "productID": product.ID})

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// DeleteProduct removes the product along with its images, inventory,
// cart lines and wishlist rows. Order items are frozen copies and stay.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Inventory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), product.ID)
	h.deindexProduct(c, product.ID)
	h.publish(c, map[string]any{"type": "product_deleted", "productID": product.ID})

	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *ProductHandler) AddImage(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		URL string `json:"url"`
		Alt string `json:"alt"`
	}
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	image := models.ProductImage{ProductID: product.ID, URL: req.URL, Alt: req.Alt}
	if err := h.DB.Create(&image).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), product.ID)
	return c.JSON(http.StatusCreated, echo.Map{"image": image})
}

// SetInventory writes an absolute stock count for a product, creating
// the inventory row when missing.
func (h *ProductHandler) SetInventory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Stock *int `json:"stock"`
	}
	if err := c.Bind(&req); err != nil || req.Stock == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "stock is required")
	}
	if *req.Stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	inv, err := inventory.SetStock(h.DB, product.ID, *req.Stock)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), product.ID)
	return c.JSON(http.StatusOK, echo.Map{"inventory": inv})
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicProductEvents, fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) indexProduct(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return
	}
	res, err := h.ES.Index(
		es.ProductIndex,
		bytes.NewReader(doc),
		h.ES.Index.WithDocumentID(fmt.Sprint(p.ID)),
		h.ES.Index.WithContext(c.Request().Context()),
	)
	if err != nil {
		c.Logger().Errorf("ES index error: %v", err)
		return
	}
	res.Body.Close()
}

func (h *ProductHandler) deindexProduct(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	res, err := h.ES.Delete(
		es.ProductIndex,
		fmt.Sprint(id),
		h.ES.Delete.WithContext(c.Request().Context()),
	)
	if err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
		return
	}
	res.Body.Close()
}
