package address

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/service/token"
)

type AddressHandler struct {
	DB *gorm.DB
}

type addressRequest struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	ZipCode      string `json:"zip_code"`
	IsDefault    *bool  `json:"is_default"`
}

func (h *AddressHandler) ListAddresses(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var addresses []models.Address
	if err := h.DB.Where("user_id = ?", userID).Order("is_default DESC, id ASC").Find(&addresses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"addresses": addresses})
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FullName == "" || req.Phone == "" || req.AddressLine1 == "" ||
		req.City == "" || req.Country == "" || req.ZipCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required address fields")
	}

	isDefault := req.IsDefault != nil && *req.IsDefault

	address := models.Address{
		UserID:       userID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		ZipCode:      req.ZipCode,
		IsDefault:    isDefault,
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if isDefault {
			if err := clearDefaults(tx, userID, 0); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"address": address})
}

func (h *AddressHandler) GetAddress(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	address, httpErr := h.ownedAddress(c, userID)
	if httpErr != nil {
		return httpErr
	}
	return c.JSON(http.StatusOK, echo.Map{"address": address})
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	existing, httpErr := h.ownedAddress(c, userID)
	if httpErr != nil {
		return httpErr
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.FullName != "" {
		existing.FullName = req.FullName
	}
	if req.Phone != "" {
		existing.Phone = req.Phone
	}
	if req.AddressLine1 != "" {
		existing.AddressLine1 = req.AddressLine1
	}
	if req.AddressLine2 != "" {
		existing.AddressLine2 = req.AddressLine2
	}
	if req.City != "" {
		existing.City = req.City
	}
	if req.State != "" {
		existing.State = req.State
	}
	if req.Country != "" {
		existing.Country = req.Country
	}
	if req.ZipCode != "" {
		existing.ZipCode = req.ZipCode
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil {
			if *req.IsDefault {
				if err := clearDefaults(tx, userID, existing.ID); err != nil {
					return err
				}
			}
			existing.IsDefault = *req.IsDefault
		}
		return tx.Save(existing).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"address": existing})
}

// SetDefault flips the default flag to the target address. Clear and
// set run in one transaction so concurrent calls cannot leave zero or
// two defaults behind.
func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	address, httpErr := h.ownedAddress(c, userID)
	if httpErr != nil {
		return httpErr
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := clearDefaults(tx, userID, address.ID); err != nil {
			return err
		}
		return tx.Model(address).UpdateColumn("is_default", true).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}
	address.IsDefault = true

	return c.JSON(http.StatusOK, echo.Map{"address": address})
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	address, httpErr := h.ownedAddress(c, userID)
	if httpErr != nil {
		return httpErr
	}

	if err := h.DB.Delete(address).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func clearDefaults(tx *gorm.DB, userID, exceptID uint) error {
	q := tx.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return q.UpdateColumn("is_default", false).Error
}

func (h *AddressHandler) ownedAddress(c echo.Context, userID uint) (*models.Address, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var address models.Address
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "address not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &address, nil
}
