package handlers

import (
	"github.com/jmoiron/sqlx"

	"cocolabs/internal/cart"
	"cocolabs/internal/config"
	"cocolabs/internal/repos"
	"cocolabs/internal/services"
)

// Model is the language model behind recommendations and chat.
type Model interface {
	services.TextGenerator
	services.Chatter
}

type Deps struct {
	Auth *services.AuthService

	AuthHandler           *AuthHandler
	ProfileHandler        *ProfileHandler
	CategoryHandler       *CategoryHandler
	ProductHandler        *ProductHandler
	SearchHandler         *SearchHandler
	CartHandler           *CartHandler
	OrderHandler          *OrderHandler
	WishlistHandler       *WishlistHandler
	RecommendationHandler *RecommendationHandler
	ChatHandler           *ChatHandler
}

// NewDeps wires repositories and services over db. Carts persist through
// storage; model serves recommendations and chat.
func NewDeps(db *sqlx.DB, cfg config.Config, storage cart.Storage, model Model) *Deps {
	userRepo := repos.NewUserRepo(db)
	profileRepo := repos.NewProfileRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	wishRepo := repos.NewWishlistRepo(db)
	recRepo := repos.NewRecommendationRepo(db)

	authSvc := services.NewAuthService(userRepo, services.NewTokens(cfg.JWTSecret, cfg.TokenTTL))
	profileSvc := services.NewProfileService(profileRepo)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo)
	cartSvc := services.NewCartService(cart.NewStore(storage), prodRepo, orderSvc)
	wishSvc := services.NewWishlistService(wishRepo, prodRepo)
	recSvc := services.NewRecommendationService(recRepo, prodRepo, orderRepo, profileRepo, model, cfg.RecommendationMaxAge)
	chatSvc := services.NewChatService(model, prodRepo)

	return &Deps{
		Auth:                  authSvc,
		AuthHandler:           &AuthHandler{Auth: authSvc},
		ProfileHandler:        &ProfileHandler{Profiles: profileSvc},
		CategoryHandler:       &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:        &ProductHandler{Catalog: catalogSvc},
		SearchHandler:         &SearchHandler{Catalog: catalogSvc},
		CartHandler:           &CartHandler{Cart: cartSvc},
		OrderHandler:          &OrderHandler{Order: orderSvc},
		WishlistHandler:       &WishlistHandler{Wish: wishSvc},
		RecommendationHandler: &RecommendationHandler{Recs: recSvc},
		ChatHandler:           &ChatHandler{Chat: chatSvc},
	}
}
