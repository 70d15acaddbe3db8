package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Description string          `json:"description"`
}

const PlaceholderImage = "/placeholder.svg?height=400&width=400"

// PlaceholderProduct stands in for catalog entries that no longer exist.
func PlaceholderProduct(id int64) Product {
	return Product{
		ID:          id,
		Name:        "Product #" + strconv.FormatInt(id, 10),
		Price:       decimal.RequireFromString("99.99"),
		Image:       PlaceholderImage,
		Description: "Product description not available",
	}
}

type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

const OrderStatusPending = "PENDING"

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shippingFee"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	ShippingInfo  ShippingInfo    `json:"shippingInfo"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentID     string          `json:"paymentId"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderItem is a line captured at purchase time; Name and Image are display-only.
type OrderItem struct {
	ID        string          `json:"id"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
	Image     string          `json:"image,omitempty"`
}

// Subtotal is price × quantity for the line.
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type WishlistItem struct {
	ID          string          `json:"id"`
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Recommendation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID int64     `json:"productId"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecommendedProduct is a recommendation joined with catalog details.
type RecommendedProduct struct {
	ID          string          `json:"id"`
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Score       float64         `json:"score"`
	Reason      string          `json:"reason"`
}
