package validate

import (
	"strings"

	"github.com/shopspring/decimal"

	"cocolabs/internal/cart"
)

const (
	maxOrderLines   = 100
	maxLineQuantity = cart.MaxQuantity
	maxChatMessages = 50
	maxChatLength   = 4000
	maxFieldLength  = 200
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return &Error{Msg: "Missing required fields"}
	}
	name, ok := Name(in.Name)
	if !ok {
		return fail("name", "must be at most 100 characters")
	}
	email, ok := Email(in.Email)
	if !ok {
		return fail("email", "invalid email address")
	}
	if !Password(in.Password) {
		return fail("password", "must be 8-64 characters with upper, lower, digit and symbol")
	}
	in.Name, in.Email = name, strings.ToLower(email)
	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	email, ok := Email(in.Email)
	if !ok || in.Password == "" || len(in.Password) > 64 {
		return &Error{Msg: "invalid email or password"}
	}
	in.Email = strings.ToLower(email)
	return nil
}

// ProfileInput carries optional profile fields; nil means "leave unchanged".
type ProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Country   *string `json:"country"`
}

func (in *ProfileInput) Validate() error {
	fields := map[string]*string{
		"firstName": in.FirstName, "lastName": in.LastName, "phone": in.Phone, "address": in.Address,
		"city": in.City, "state": in.State, "zipCode": in.ZipCode, "country": in.Country,
	}
	for name, v := range fields {
		if v == nil {
			continue
		}
		*v = strings.TrimSpace(*v)
		if len(*v) > maxFieldLength {
			return fail(name, "must be at most %d characters", maxFieldLength)
		}
	}
	if in.Phone != nil && *in.Phone != "" && !Phone(*in.Phone) {
		return fail("phone", "invalid phone number")
	}
	if in.ZipCode != nil && *in.ZipCode != "" && !ZipCode(*in.ZipCode) {
		return fail("zipCode", "invalid postal code")
	}
	return nil
}

type OrderLineInput struct {
	ID       int64            `json:"id"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type ShippingInput struct {
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

func (in *ShippingInput) Validate() error {
	required := []struct{ name, val string }{
		{"shippingInfo.firstName", in.FirstName}, {"shippingInfo.lastName", in.LastName},
		{"shippingInfo.address", in.Address}, {"shippingInfo.city", in.City},
		{"shippingInfo.zipCode", in.ZipCode}, {"shippingInfo.country", in.Country},
	}
	for _, f := range required {
		v := strings.TrimSpace(f.val)
		if v == "" {
			return fail(f.name, "is required")
		}
		if len(v) > maxFieldLength {
			return fail(f.name, "must be at most %d characters", maxFieldLength)
		}
	}
	email, ok := Email(in.Email)
	if !ok {
		return fail("shippingInfo.email", "invalid email address")
	}
	in.Email = email
	if !ZipCode(in.ZipCode) {
		return fail("shippingInfo.zipCode", "invalid postal code")
	}
	if in.Phone != "" && !Phone(in.Phone) {
		return fail("shippingInfo.phone", "invalid phone number")
	}
	return nil
}

type OrderInput struct {
	Items         []OrderLineInput `json:"items"`
	ShippingInfo  ShippingInput    `json:"shippingInfo"`
	PaymentMethod string           `json:"paymentMethod"`
	PaymentID     string           `json:"paymentId"`
	Total         *decimal.Decimal `json:"total,omitempty"`
}

func (in *OrderInput) Validate() error {
	if len(in.Items) == 0 {
		return fail("items", "at least one item is required")
	}
	if len(in.Items) > maxOrderLines {
		return fail("items", "at most %d lines", maxOrderLines)
	}
	for _, it := range in.Items {
		if it.ID < 1 {
			return fail("items.id", "must be a positive product id")
		}
		if it.Quantity < 1 || it.Quantity > maxLineQuantity {
			return fail("items.quantity", "must be between 1 and %d", maxLineQuantity)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return fail("items.price", "must not be negative")
		}
	}
	if err := in.ShippingInfo.Validate(); err != nil {
		return err
	}
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if in.PaymentMethod == "" || len(in.PaymentMethod) > 50 {
		return fail("paymentMethod", "is required")
	}
	if len(in.PaymentID) > maxFieldLength {
		return fail("paymentId", "must be at most %d characters", maxFieldLength)
	}
	return nil
}

type WishlistInput struct {
	ProductID int64 `json:"productId"`
}

func (in *WishlistInput) Validate() error {
	if in.ProductID < 1 {
		return &Error{Field: "productId", Msg: "Product ID is required"}
	}
	return nil
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatInput struct {
	Messages []ChatMessage `json:"messages"`
}

func (in *ChatInput) Validate() error {
	if len(in.Messages) == 0 {
		return fail("messages", "at least one message is required")
	}
	if len(in.Messages) > maxChatMessages {
		return fail("messages", "at most %d messages", maxChatMessages)
	}
	for _, m := range in.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			return fail("messages.role", "must be user or assistant")
		}
		if strings.TrimSpace(m.Content) == "" || len(m.Content) > maxChatLength {
			return fail("messages.content", "must be 1-%d characters", maxChatLength)
		}
	}
	return nil
}

type CartItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (in *CartItemInput) Validate() error {
	if in.ProductID < 1 {
		return fail("productId", "must be a positive product id")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 || in.Quantity > maxLineQuantity {
		return fail("quantity", "must be between 1 and %d", maxLineQuantity)
	}
	return nil
}

type CartQuantityInput struct {
	Quantity int `json:"quantity"`
}

func (in *CartQuantityInput) Validate() error {
	if in.Quantity > maxLineQuantity {
		return fail("quantity", "must be at most %d", maxLineQuantity)
	}
	return nil
}

// CheckoutInput completes a cart checkout; the lines come from the stored cart.
type CheckoutInput struct {
	ShippingInfo  ShippingInput `json:"shippingInfo"`
	PaymentMethod string        `json:"paymentMethod"`
	PaymentID     string        `json:"paymentId"`
}

// Order turns the checkout into an order request for the given lines.
func (in CheckoutInput) Order(lines []OrderLineInput) OrderInput {
	return OrderInput{Items: lines, ShippingInfo: in.ShippingInfo, PaymentMethod: in.PaymentMethod, PaymentID: in.PaymentID}
}

// CheckoutForm is the checkout page's urlencoded form, with flat field names.
type CheckoutForm struct {
	FirstName     string `form:"firstName"`
	LastName      string `form:"lastName"`
	Email         string `form:"email"`
	Phone         string `form:"phone"`
	Address       string `form:"address"`
	City          string `form:"city"`
	State         string `form:"state"`
	ZipCode       string `form:"zipCode"`
	Country       string `form:"country"`
	PaymentMethod string `form:"paymentMethod"`
}

func (f CheckoutForm) Input() CheckoutInput {
	return CheckoutInput{
		ShippingInfo: ShippingInput{
			FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Phone: f.Phone,
			Address: f.Address, City: f.City, State: f.State, ZipCode: f.ZipCode, Country: f.Country,
		},
		PaymentMethod: f.PaymentMethod,
	}
}
