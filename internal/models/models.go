package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey"      json:"id"`
	Name        string `gorm:"not null"        json:"name"`
	Slug        string `gorm:"unique;not null" json:"slug"`
	Description string `json:"description"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	CategoryID  *uint           `gorm:"index"                       json:"category_id"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID"        json:"images,omitempty"`
	Inventory   *Inventory      `gorm:"foreignKey:ProductID"        json:"inventory,omitempty"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	URL       string `gorm:"not null"       json:"url"`
	Alt       string `json:"alt"`
}

// Inventory holds the available-to-sell count for a product. StockCount
// staying non-negative is enforced by the conditional decrement in the
// checkout path, not by the schema.
type Inventory struct {
	ID          uint `gorm:"primaryKey"           json:"id"`
	ProductID   uint `gorm:"uniqueIndex;not null" json:"product_id"`
	StockCount  int  `gorm:"not null;default:0"   json:"stock_count"`
	SafetyStock int  `gorm:"not null;default:0"   json:"safety_stock"`
}

type Cart struct {
	ID     uint       `gorm:"primaryKey"           json:"id"`
	UserID uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID"    json:"items"`
}

// CartItem.Price is the unit price captured when the line was first
// added. Later catalog price edits do not touch it.
type CartItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	CartID    uint            `gorm:"index;not null"              json:"cart_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  uint            `gorm:"default:1;check:quantity>0"  json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	Product   *Product        `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
}

type Address struct {
	ID           uint   `gorm:"primaryKey"     json:"id"`
	UserID       uint   `gorm:"index;not null" json:"user_id"`
	FullName     string `gorm:"not null"       json:"full_name"`
	Phone        string `gorm:"not null"       json:"phone"`
	AddressLine1 string `gorm:"not null"       json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `gorm:"not null"      json:"city"`
	State        string `json:"state"`
	Country      string `gorm:"not null"      json:"country"`
	ZipCode      string `gorm:"not null"      json:"zip_code"`
	IsDefault    bool   `gorm:"default:false" json:"is_default"`
}

const (
	OrderStatusPendingPayment = "pending-payment"
	OrderStatusPaid           = "paid"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Order is a deep copy of the cart at purchase time. It never points
// back at live cart or catalog rows, so later catalog edits cannot
// corrupt it.
type Order struct {
	ID            uint            `gorm:"primaryKey"                  json:"id"`
	Reference     uuid.UUID       `gorm:"type:uuid;uniqueIndex"       json:"reference"`
	UserID        uint            `gorm:"index;not null"              json:"user_id"`
	AddressID     uint            `gorm:"not null"                    json:"address_id"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total_price"`
	PaymentMethod string          `gorm:"not null"                    json:"payment_method"`
	Status        string          `gorm:"not null"                    json:"status"`
	CreatedAt     time.Time       `gorm:"not null"                    json:"created_at"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID"          json:"items"`
	Address       *Address        `gorm:"foreignKey:AddressID"        json:"address,omitempty"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  uint            `gorm:"default:1;check:quantity>0"  json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"                                json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_prod_user" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_prod_user" json:"user_id"`
	Rating    int       `gorm:"not null"                                  json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type WishlistItem struct {
	ID        uint     `gorm:"primaryKey"                              json:"id"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_wish_user_prod" json:"user_id"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_wish_user_prod" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID"                    json:"product,omitempty"`
}

// All lists every model registered for migration.
func All() []any {
	return []any{
		&User{}, &RefreshToken{}, &Category{}, &Product{}, &ProductImage{},
		&Inventory{}, &Cart{}, &CartItem{}, &Address{}, &Order{},
		&OrderItem{}, &Review{}, &WishlistItem{},
	}
}
