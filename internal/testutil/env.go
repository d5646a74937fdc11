package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/hash"
	"github.com/luxe-shop/backend/internal/models"
)

// NewTestDB opens a fresh in-memory sqlite database migrated with the
// full schema. Each test gets its own database keyed by the test name.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// DoJSONRequest builds an echo context around a recorded JSON request.
func DoJSONRequest(e *echo.Echo, method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

// Authed marks the context as an authenticated user, the way the login
// middleware would.
func Authed(c echo.Context, userID uint, role string) {
	c.Set("userID", userID)
	c.Set("role", role)
}

// SeedUser inserts a user with a hashed password and returns it.
func SeedUser(t *testing.T, db *gorm.DB, username, password, role string) models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: pwHash,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// SeedProduct inserts a product with the given price and stock count.
func SeedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()

	p, err := decimal.NewFromString(price)
	require.NoError(t, err)

	product := models.Product{Name: name, Description: name + " description", Price: p}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.Inventory{ProductID: product.ID, StockCount: stock}).Error)
	return product
}

// SeedAddress inserts a shipping address for the user.
func SeedAddress(t *testing.T, db *gorm.DB, userID uint, isDefault bool) models.Address {
	t.Helper()

	address := models.Address{
		UserID:       userID,
		FullName:     "Test User",
		Phone:        "+10000000000",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		ZipCode:      "00001",
		IsDefault:    isDefault,
	}
	require.NoError(t, db.Create(&address).Error)
	return address
}

// HTTPErrorCode unwraps the status code of an echo handler error.
func HTTPErrorCode(t *testing.T, err error) int {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
