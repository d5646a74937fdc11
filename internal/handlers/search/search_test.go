package search

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/testutil"
)

func doSearch(t *testing.T, h *SearchHandler, target string) []result {
	t.Helper()

	e := echo.New()
	rec, c := testutil.DoJSONRequest(e, http.MethodGet, target, nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Results
}

func TestSearchFallbackMatchesNameAndDescription(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := &SearchHandler{DB: db}

	testutil.SeedProduct(t, db, "Walnut Desk", "249.99", 3)
	testutil.SeedProduct(t, db, "Office Chair", "89.00", 0)
	testutil.SeedProduct(t, db, "Coffee Mug", "7.50", 12)

	results := doSearch(t, h, "/api/v1/search?q=desk")
	require.Len(t, results, 1)
	require.Equal(t, "Walnut Desk", results[0].Name)
	require.Equal(t, "249.99", results[0].Price)
	require.True(t, results[0].InStock)

	// "description" suffix from the seeded description matches every row.
	results = doSearch(t, h, "/api/v1/search?q=description")
	require.Len(t, results, 3)
}

func TestSearchReportsOutOfStock(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := &SearchHandler{DB: db}

	testutil.SeedProduct(t, db, "Office Chair", "89.00", 0)

	results := doSearch(t, h, "/api/v1/search?q=chair")
	require.Len(t, results, 1)
	require.False(t, results[0].InStock)
}

func TestSearchEmptyQuery(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := &SearchHandler{DB: db}
	testutil.SeedProduct(t, db, "Walnut Desk", "249.99", 3)

	results := doSearch(t, h, "/api/v1/search?q=")
	require.Empty(t, results)
}

func TestSearchPagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := &SearchHandler{DB: db}

	for _, name := range []string{"Lamp A", "Lamp B", "Lamp C"} {
		testutil.SeedProduct(t, db, name, "10.00", 1)
	}

	first := doSearch(t, h, "/api/v1/search?q=lamp&page=1&size=2")
	require.Len(t, first, 2)

	second := doSearch(t, h, "/api/v1/search?q=lamp&page=2&size=2")
	require.Len(t, second, 1)
}

func TestSearchIncludesFirstImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := &SearchHandler{DB: db}

	p := testutil.SeedProduct(t, db, "Walnut Desk", "249.99", 3)
	require.NoError(t, db.Create(&models.ProductImage{ProductID: p.ID, URL: "https://img.example/desk.jpg"}).Error)

	results := doSearch(t, h, "/api/v1/search?q=walnut")
	require.Len(t, results, 1)
	require.Equal(t, "https://img.example/desk.jpg", results[0].Image)
}
