package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocolabs/internal/domain"
)

func wishlistOf(t *testing.T, env *testEnv, s session) []domain.WishlistItem {
	t.Helper()
	resp := env.do(t, http.MethodGet, "/api/user/wishlist", nil, s)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Items []domain.WishlistItem `json:"items"`
	}
	decode(t, resp, &out)
	return out.Items
}

func TestWishlistSaveAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	s := env.login(t, demoEmail, demoPassword)

	resp := env.do(t, http.MethodPost, "/api/user/wishlist", fiber.Map{"productId": 2}, s)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved struct {
		Item domain.WishlistItem `json:"item"`
	}
	decode(t, resp, &saved)
	assert.NotEmpty(t, saved.Item.ID)
	assert.Equal(t, "Advanced Modular Controller", saved.Item.Name)

	resp = env.do(t, http.MethodPost, "/api/user/wishlist", fiber.Map{"productId": 2}, s)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Product already in wishlist", messageOf(t, resp))

	resp = env.do(t, http.MethodPost, "/api/user/wishlist", fiber.Map{"productId": 999}, s)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", messageOf(t, resp))

	resp = env.do(t, http.MethodPost, "/api/user/wishlist", fiber.Map{}, s)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product ID is required", messageOf(t, resp))

	items := wishlistOf(t, env, s)
	require.Len(t, items, 1)
	assert.Equal(t, saved.Item.ID, items[0].ID)
}

// Deleting someone else's wishlist item looks exactly like deleting a missing one.
func TestWishlistDeleteIsScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, demoEmail, demoPassword)
	other := env.register(t, "Mallory", "mallory@example.com")

	resp := env.do(t, http.MethodPost, "/api/user/wishlist", fiber.Map{"productId": 3}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved struct {
		Item domain.WishlistItem `json:"item"`
	}
	decode(t, resp, &saved)

	logs := captureLogs(t)
	resp = env.do(t, http.MethodDelete, "/api/user/wishlist/"+saved.Item.ID, nil, other)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Wishlist item not found", messageOf(t, resp))
	assert.NotNil(t, findAction(logs, "access.denied.wishlist"))
	require.Len(t, wishlistOf(t, env, owner), 1)

	resp = env.do(t, http.MethodDelete, "/api/user/wishlist/"+saved.Item.ID, nil, owner)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, wishlistOf(t, env, owner))

	resp = env.do(t, http.MethodDelete, "/api/user/wishlist/"+saved.Item.ID, nil, owner)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
