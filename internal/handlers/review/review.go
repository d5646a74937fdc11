package review

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/service/token"
)

type ReviewHandler struct {
	DB *gorm.DB
}

func productIDParam(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return uint(id), nil
}

func (h *ReviewHandler) ListReviews(c echo.Context) error {
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	var reviews []models.Review
	if err := h.DB.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	avg := 0.0
	for _, r := range reviews {
		avg += float64(r.Rating)
	}
	if len(reviews) > 0 {
		avg /= float64(len(reviews))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"reviews":    reviews,
		"avg_rating": strconv.FormatFloat(avg, 'f', 1, 64),
	})
}

// UpsertReview creates or replaces the caller's review for a product.
// One review per user+product pair.
func (h *ReviewHandler) UpsertReview(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be 1-5")
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var review models.Review
	err = h.DB.Where("product_id = ? AND user_id = ?", productID, userID).First(&review).Error
	switch {
	case err == nil:
		review.Rating = req.Rating
		review.Comment = req.Comment
		if err := h.DB.Save(&review).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = models.Review{
			ProductID: productID,
			UserID:    userID,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		}
		if err := h.DB.Create(&review).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"review": review})
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	if err := h.DB.Where("product_id = ? AND user_id = ?", productID, userID).
		Delete(&models.Review{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
