package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/luxe-shop/backend/internal/handlers/address"
	"github.com/luxe-shop/backend/internal/handlers/auth"
	"github.com/luxe-shop/backend/internal/handlers/cart"
	"github.com/luxe-shop/backend/internal/handlers/catalog"
	"github.com/luxe-shop/backend/internal/handlers/checkout"
	"github.com/luxe-shop/backend/internal/handlers/order"
	"github.com/luxe-shop/backend/internal/handlers/review"
	"github.com/luxe-shop/backend/internal/handlers/search"
	"github.com/luxe-shop/backend/internal/handlers/wishlist"
	"github.com/luxe-shop/backend/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *auth.AuthHandler
	ProductHandler  *catalog.ProductHandler
	CartHandler     *cart.CartHandler
	CheckoutHandler *checkout.CheckoutHandler
	OrderHandler    *order.OrderHandler
	AddressHandler  *address.AddressHandler
	ReviewHandler   *review.ReviewHandler
	WishlistHandler *wishlist.WishlistHandler
	SearchHandler   *search.SearchHandler
	TokenService    *token.Service
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", d.AuthHandler.Register)
	v1.POST("/auth/login", d.AuthHandler.Login)
	v1.POST("/auth/refresh", d.AuthHandler.Refresh)
	v1.POST("/auth/logout", d.AuthHandler.LogOut)

	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/recommendations", d.ProductHandler.Recommendations)
	products.GET("/:id/reviews", d.ReviewHandler.ListReviews)
	products.POST("/:id/reviews", d.ReviewHandler.UpsertReview, d.TokenService.RequireLogin)
	products.DELETE("/:id/reviews", d.ReviewHandler.DeleteReview, d.TokenService.RequireLogin)

	cartGroup := v1.Group("/cart", d.TokenService.RequireLogin)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("/items", d.CartHandler.AddItem)
	cartGroup.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cartGroup.DELETE("/items/:id", d.CartHandler.RemoveItem)
	cartGroup.DELETE("", d.CartHandler.ClearCart)

	v1.POST("/checkout", d.CheckoutHandler.Checkout, d.TokenService.RequireLogin)

	orders := v1.Group("/orders", d.TokenService.RequireLogin)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	addresses := v1.Group("/addresses", d.TokenService.RequireLogin)
	addresses.GET("", d.AddressHandler.ListAddresses)
	addresses.POST("", d.AddressHandler.CreateAddress)
	addresses.GET("/:id", d.AddressHandler.GetAddress)
	addresses.PATCH("/:id", d.AddressHandler.UpdateAddress)
	addresses.POST("/:id/set-default", d.AddressHandler.SetDefault)
	addresses.DELETE("/:id", d.AddressHandler.DeleteAddress)

	wishlistGroup := v1.Group("/wishlist", d.TokenService.RequireLogin)
	wishlistGroup.GET("", d.WishlistHandler.GetWishlist)
	wishlistGroup.POST("", d.WishlistHandler.AddToWishlist)
	wishlistGroup.DELETE("/:productId", d.WishlistHandler.RemoveFromWishlist)

	admin := v1.Group("/admin", d.TokenService.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/products/:id/images", d.ProductHandler.AddImage)
	admin.PUT("/products/:id/inventory", d.ProductHandler.SetInventory)
	admin.GET("/orders", d.OrderHandler.AdminListOrders)
	admin.GET("/orders/:id", d.OrderHandler.AdminGetOrder)
	admin.PUT("/orders/:id/status", d.OrderHandler.AdminUpdateStatus)
}
