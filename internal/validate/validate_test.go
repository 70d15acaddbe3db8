package validate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocolabs/internal/validate"
)

func TestPassword(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd!":                      true,
		"short1!":                        false,
		"alllowercase1!":                 false,
		"ALLUPPER1!":                     false,
		"NoDigits!!":                     false,
		"NoSymbol11":                     false,
		"Aa1!" + strings.Repeat("x", 60): true,
		"Aa1!" + strings.Repeat("x", 61): false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, validate.Password(pw), pw)
	}
}

func TestRegisterInput(t *testing.T) {
	in := validate.RegisterInput{Name: " Ada ", Email: "Ada@Example.com", Password: "Passw0rd!"}
	require.NoError(t, in.Validate())
	assert.Equal(t, "Ada", in.Name)
	assert.Equal(t, "ada@example.com", in.Email)

	missing := validate.RegisterInput{Email: "a@b.co", Password: "Passw0rd!"}
	err := missing.Validate()
	var ve *validate.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Missing required fields", ve.Error())

	badEmail := validate.RegisterInput{Name: "A", Email: "not-an-email", Password: "Passw0rd!"}
	require.True(t, errors.As(badEmail.Validate(), &ve))
	assert.Equal(t, "email", ve.Field)

	weak := validate.RegisterInput{Name: "A", Email: "a@b.co", Password: "password"}
	require.True(t, errors.As(weak.Validate(), &ve))
	assert.Equal(t, "password", ve.Field)
}

func validOrder() validate.OrderInput {
	return validate.OrderInput{
		Items: []validate.OrderLineInput{{ID: 1, Quantity: 2}},
		ShippingInfo: validate.ShippingInput{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Address: "1 Engine Way", City: "Austin", State: "TX", ZipCode: "78701", Country: "US",
		},
		PaymentMethod: "card",
	}
}

func TestOrderInput(t *testing.T) {
	in := validOrder()
	require.NoError(t, in.Validate())

	mutations := map[string]func(*validate.OrderInput){
		"items":                func(o *validate.OrderInput) { o.Items = nil },
		"items.quantity":       func(o *validate.OrderInput) { o.Items[0].Quantity = 0 },
		"items.id":             func(o *validate.OrderInput) { o.Items[0].ID = -3 },
		"items.price":          func(o *validate.OrderInput) { p := decimal.NewFromInt(-1); o.Items[0].Price = &p },
		"shippingInfo.city":    func(o *validate.OrderInput) { o.ShippingInfo.City = " " },
		"shippingInfo.email":   func(o *validate.OrderInput) { o.ShippingInfo.Email = "nope" },
		"shippingInfo.zipCode": func(o *validate.OrderInput) { o.ShippingInfo.ZipCode = "!!" },
		"paymentMethod":        func(o *validate.OrderInput) { o.PaymentMethod = "" },
	}
	for field, mutate := range mutations {
		in := validOrder()
		mutate(&in)
		var ve *validate.Error
		require.True(t, errors.As(in.Validate(), &ve), field)
		assert.Equal(t, field, ve.Field)
	}
}

func TestProfileInputTrimsAndChecks(t *testing.T) {
	city, phone := "  Austin ", "555-0100 123"
	in := validate.ProfileInput{City: &city, Phone: &phone}
	require.NoError(t, in.Validate())
	assert.Equal(t, "Austin", *in.City)

	bad := "call me"
	in = validate.ProfileInput{Phone: &bad}
	assert.Error(t, in.Validate())

	long := strings.Repeat("a", 201)
	in = validate.ProfileInput{Address: &long}
	assert.Error(t, in.Validate())
}

func TestWishlistAndCartInputs(t *testing.T) {
	assert.Error(t, (&validate.WishlistInput{}).Validate())
	assert.NoError(t, (&validate.WishlistInput{ProductID: 3}).Validate())

	ci := validate.CartItemInput{ProductID: 2}
	require.NoError(t, ci.Validate())
	assert.Equal(t, 1, ci.Quantity)
	assert.Error(t, (&validate.CartItemInput{ProductID: 2, Quantity: -1}).Validate())
	assert.NoError(t, (&validate.CartQuantityInput{Quantity: 0}).Validate())
}

func TestChatInput(t *testing.T) {
	assert.Error(t, (&validate.ChatInput{}).Validate())
	assert.Error(t, (&validate.ChatInput{Messages: []validate.ChatMessage{{Role: "system", Content: "x"}}}).Validate())
	assert.Error(t, (&validate.ChatInput{Messages: []validate.ChatMessage{{Role: "user", Content: "  "}}}).Validate())
	assert.NoError(t, (&validate.ChatInput{Messages: []validate.ChatMessage{{Role: "user", Content: "hello"}}}).Validate())
}

func TestHelpers(t *testing.T) {
	id, ok := validate.ProductID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	_, ok = validate.ProductID("0")
	assert.False(t, ok)
	_, ok = validate.ID("../etc")
	assert.False(t, ok)
	assert.Equal(t, 50, validate.Qty("999"))
	assert.Equal(t, 1, validate.Qty("x"))
}
