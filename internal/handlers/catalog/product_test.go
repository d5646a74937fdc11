package catalog

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/testutil"
)

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
	H  *ProductHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.NewTestDB(t)
	return &testEnv{E: echo.New(), DB: db, H: &ProductHandler{DB: db}}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/admin/products", productRequest{
		Name:        "Walnut Desk",
		Description: "Solid walnut writing desk",
		Price:       strPtr("249.99"),
		Images:      []string{"https://img.example/desk.jpg"},
		Stock:       intPtr(5),
	})
	require.NoError(t, env.H.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var product models.Product
	require.NoError(t, env.DB.Preload("Images").Preload("Inventory").
		Where("name = ?", "Walnut Desk").First(&product).Error)
	require.True(t, product.Price.Equal(decimal.RequireFromString("249.99")))
	require.Len(t, product.Images, 1)
	require.NotNil(t, product.Inventory)
	require.Equal(t, 5, product.Inventory.StockCount)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)

	err := func() error {
		_, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/admin/products",
			productRequest{Description: "no name or price"})
		return env.H.CreateProduct(c)
	}()
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, testutil.HTTPErrorCode(t, err))

	err = func() error {
		_, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/admin/products",
			productRequest{Name: "Bad Price", Price: strPtr("-1.00")})
		return env.H.CreateProduct(c)
	}()
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, testutil.HTTPErrorCode(t, err))
}

func TestPatchProductPrice(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "Walnut Desk", "249.99", 5)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodPatch, "/api/v1/admin/products/1",
		productRequest{Price: strPtr("199.99")})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.H.PatchProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	require.NoError(t, env.DB.First(&updated, product.ID).Error)
	require.True(t, updated.Price.Equal(decimal.RequireFromString("199.99")))
	require.Equal(t, "Walnut Desk", updated.Name)
}

func TestDeleteProductCascades(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.SeedUser(t, env.DB, "shopper", "secret123", "user")
	product := testutil.SeedProduct(t, env.DB, "Walnut Desk", "249.99", 5)

	cart := models.Cart{UserID: user.ID}
	require.NoError(t, env.DB.Create(&cart).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1, Price: product.Price,
	}).Error)
	require.NoError(t, env.DB.Create(&models.WishlistItem{UserID: user.ID, ProductID: product.ID}).Error)

	_, c := testutil.DoJSONRequest(env.E, http.MethodDelete, "/api/v1/admin/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.H.DeleteProduct(c))

	var count int64
	env.DB.Model(&models.Product{}).Count(&count)
	require.Zero(t, count)
	env.DB.Model(&models.Inventory{}).Count(&count)
	require.Zero(t, count)
	env.DB.Model(&models.CartItem{}).Count(&count)
	require.Zero(t, count)
	env.DB.Model(&models.WishlistItem{}).Count(&count)
	require.Zero(t, count)
}

func TestDeleteUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, c := testutil.DoJSONRequest(env.E, http.MethodDelete, "/api/v1/admin/products/42", nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	err := env.H.DeleteProduct(c)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, testutil.HTTPErrorCode(t, err))
}

func TestSetInventory(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "Walnut Desk", "249.99", 5)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodPut, "/api/v1/admin/products/1/inventory",
		map[string]int{"stock": 12})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.H.SetInventory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var inv models.Inventory
	require.NoError(t, env.DB.Where("product_id = ?", product.ID).First(&inv).Error)
	require.Equal(t, 12, inv.StockCount)

	_, c = testutil.DoJSONRequest(env.E, http.MethodPut, "/api/v1/admin/products/1/inventory",
		map[string]int{"stock": -1})
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.H.SetInventory(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, testutil.HTTPErrorCode(t, err))
}

func TestRecommendationsSameCategory(t *testing.T) {
	env := newTestEnv(t)

	category := models.Category{Name: "Furniture", Slug: "furniture"}
	require.NoError(t, env.DB.Create(&category).Error)
	other := models.Category{Name: "Kitchen", Slug: "kitchen"}
	require.NoError(t, env.DB.Create(&other).Error)

	desk := testutil.SeedProduct(t, env.DB, "Walnut Desk", "249.99", 5)
	chair := testutil.SeedProduct(t, env.DB, "Office Chair", "89.00", 3)
	mug := testutil.SeedProduct(t, env.DB, "Coffee Mug", "7.50", 12)

	require.NoError(t, env.DB.Model(&models.Product{}).
		Where("id IN ?", []uint{desk.ID, chair.ID}).
		Update("category_id", category.ID).Error)
	require.NoError(t, env.DB.Model(&models.Product{}).
		Where("id = ?", mug.ID).
		Update("category_id", other.ID).Error)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodGet, "/api/v1/products/1/recommendations", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.H.Recommendations(c))

	var resp struct {
		Recommendations []models.Product `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	require.Equal(t, chair.ID, resp.Recommendations[0].ID)
}

func TestGetProductsFiltersByCategory(t *testing.T) {
	env := newTestEnv(t)

	category := models.Category{Name: "Furniture", Slug: "furniture"}
	require.NoError(t, env.DB.Create(&category).Error)

	desk := testutil.SeedProduct(t, env.DB, "Walnut Desk", "249.99", 5)
	testutil.SeedProduct(t, env.DB, "Coffee Mug", "7.50", 12)
	require.NoError(t, env.DB.Model(&models.Product{}).
		Where("id = ?", desk.ID).
		Update("category_id", category.ID).Error)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodGet, "/api/v1/products?category=furniture", nil)
	require.NoError(t, env.H.GetProducts(c))

	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	require.Equal(t, desk.ID, resp.Products[0].ID)
}
