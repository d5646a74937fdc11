package cart

import (
	"encoding/json"
	"fmt"
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
	E    *echo.Echo
	DB   *gorm.DB
	H    *CartHandler
	User models.User
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.NewTestDB(t)
	return &testEnv{
		E:    echo.New(),
		DB:   db,
		H:    &CartHandler{DB: db},
		User: testutil.SeedUser(t, db, "shopper", "secret", "user"),
	}
}

func TestGetCartEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodGet, "/api/v1/cart", nil)
	testutil.Authed(c, env.User.ID, "user")

	require.NoError(t, env.H.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []models.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 0)
}

func TestAddItemCreatesLineWithSnapshotPrice(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	load := map[string]int{"product_id": int(product.ID), "quantity": 2}
	rec, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/cart/items", load)
	testutil.Authed(c, env.User.ID, "user")

	require.NoError(t, env.H.AddItem(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, product.ID, item.ProductID)
	require.Equal(t, uint(2), item.Quantity)
	require.True(t, item.Price.Equal(decimal.RequireFromString("189.00")))
}

func TestAddItemMergesQuantityAndKeepsCapturedPrice(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	load := map[string]int{"product_id": int(product.ID), "quantity": 2}
	_, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/cart/items", load)
	testutil.Authed(c, env.User.ID, "user")
	require.NoError(t, env.H.AddItem(c))

	// Catalog price changes must not reprice the existing line.
	require.NoError(t, env.DB.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("price", "249.00").Error)

	load["quantity"] = 3
	rec, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/cart/items", load)
	testutil.Authed(c, env.User.ID, "user")
	require.NoError(t, env.H.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, env.DB.Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, uint(5), items[0].Quantity)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("189.00")))
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	cases := []map[string]int{
		{"product_id": int(product.ID), "quantity": 0},
		{"product_id": int(product.ID), "quantity": -1},
		{"product_id": 0, "quantity": 1},
	}
	for _, load := range cases {
		_, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/cart/items", load)
		testutil.Authed(c, env.User.ID, "user")
		err := env.H.AddItem(c)
		require.Error(t, err)
		require.Equal(t, http.StatusBadRequest, testutil.HTTPErrorCode(t, err))
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	load := map[string]int{"product_id": 999, "quantity": 1}
	_, c := testutil.DoJSONRequest(env.E, http.MethodPost, "/api/v1/cart/items", load)
	testutil.Authed(c, env.User.ID, "user")

	err := env.H.AddItem(c)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, testutil.HTTPErrorCode(t, err))
}

func TestUpdateItemQuantity(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	cartRow := models.Cart{UserID: env.User.ID}
	require.NoError(t, env.DB.Create(&cartRow).Error)
	item := models.CartItem{CartID: cartRow.ID, ProductID: product.ID, Quantity: 2, Price: product.Price}
	require.NoError(t, env.DB.Create(&item).Error)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodPatch,
		fmt.Sprintf("/api/v1/cart/items/%d", item.ID), map[string]int{"quantity": 7})
	testutil.Authed(c, env.User.ID, "user")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))

	require.NoError(t, env.H.UpdateItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.CartItem
	require.NoError(t, env.DB.First(&got, item.ID).Error)
	require.Equal(t, uint(7), got.Quantity)
}

func TestUpdateItemRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	cartRow := models.Cart{UserID: env.User.ID}
	require.NoError(t, env.DB.Create(&cartRow).Error)
	item := models.CartItem{CartID: cartRow.ID, ProductID: product.ID, Quantity: 2, Price: product.Price}
	require.NoError(t, env.DB.Create(&item).Error)

	_, c := testutil.DoJSONRequest(env.E, http.MethodPatch,
		fmt.Sprintf("/api/v1/cart/items/%d", item.ID), map[string]int{"quantity": 0})
	testutil.Authed(c, env.User.ID, "user")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))

	err := env.H.UpdateItem(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, testutil.HTTPErrorCode(t, err))
}

func TestUpdateItemOfAnotherUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.SeedUser(t, env.DB, "other", "secret", "user")
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	otherCart := models.Cart{UserID: other.ID}
	require.NoError(t, env.DB.Create(&otherCart).Error)
	item := models.CartItem{CartID: otherCart.ID, ProductID: product.ID, Quantity: 2, Price: product.Price}
	require.NoError(t, env.DB.Create(&item).Error)

	_, c := testutil.DoJSONRequest(env.E, http.MethodPatch,
		fmt.Sprintf("/api/v1/cart/items/%d", item.ID), map[string]int{"quantity": 3})
	testutil.Authed(c, env.User.ID, "user")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))

	err := env.H.UpdateItem(c)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, testutil.HTTPErrorCode(t, err))
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	product := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)

	cartRow := models.Cart{UserID: env.User.ID}
	require.NoError(t, env.DB.Create(&cartRow).Error)
	item := models.CartItem{CartID: cartRow.ID, ProductID: product.ID, Quantity: 2, Price: product.Price}
	require.NoError(t, env.DB.Create(&item).Error)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodDelete,
		fmt.Sprintf("/api/v1/cart/items/%d", item.ID), nil)
	testutil.Authed(c, env.User.ID, "user")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))

	require.NoError(t, env.H.RemoveItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)
	p1 := testutil.SeedProduct(t, env.DB, "wallet", "189.00", 10)
	p2 := testutil.SeedProduct(t, env.DB, "belt", "99.00", 10)

	cartRow := models.Cart{UserID: env.User.ID}
	require.NoError(t, env.DB.Create(&cartRow).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{CartID: cartRow.ID, ProductID: p1.ID, Quantity: 1, Price: p1.Price}).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{CartID: cartRow.ID, ProductID: p2.ID, Quantity: 2, Price: p2.Price}).Error)

	rec, c := testutil.DoJSONRequest(env.E, http.MethodDelete, "/api/v1/cart", nil)
	testutil.Authed(c, env.User.ID, "user")

	require.NoError(t, env.H.ClearCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}
