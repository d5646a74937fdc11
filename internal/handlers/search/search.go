package search

import (
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
	searchsvc "github.com/luxe-shop/backend/internal/service/search"
	"github.com/luxe-shop/backend/internal/util"
)

type SearchHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

type result struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Price   string `json:"price"`
	Image   string `json:"image"`
	InStock bool   `json:"in_stock"`
}

func toResult(p models.Product) result {
	r := result{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.StringFixed(2),
	}
	if len(p.Images) > 0 {
		r.Image = p.Images[0].URL
	}
	if p.Inventory != nil {
		r.InStock = p.Inventory.StockCount > 0
	}
	return r
}

// Search queries the product index when ES is wired, else falls back
// to a substring match over the catalog table.
func (h *SearchHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusOK, echo.Map{"results": []result{}})
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), 10)
	from, limit := util.Calculate(page, size)

	var products []models.Product
	if h.ES != nil {
		_, hits, err := searchsvc.Query(c.Request().Context(), h.ES, h.Index, q, from, limit)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		products = hits
	} else {
		pattern := "%" + q + "%"
		if err := h.DB.Preload("Images").Preload("Inventory").
			Where("name LIKE ? OR description LIKE ?", pattern, pattern).
			Limit(limit).Offset(from).
			Find(&products).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	results := make([]result, 0, len(products))
	for _, p := range products {
		results = append(results, toResult(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}
