package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"cocolabs/internal/domain"
	"cocolabs/internal/repos"
)

type WishlistService struct {
	Repo  *repos.WishlistRepo
	Prods *repos.ProductRepo
}

func NewWishlistService(r *repos.WishlistRepo, prods *repos.ProductRepo) *WishlistService {
	return &WishlistService{Repo: r, Prods: prods}
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	return s.Repo.ListForUser(ctx, userID)
}

// Save adds a catalog product to the user's wishlist.
// Unknown products yield ErrNotFound, repeats yield ErrConflict.
func (s *WishlistService) Save(ctx context.Context, userID string, productID int64) (domain.WishlistItem, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		if repos.IsNotFound(err) {
			return domain.WishlistItem{}, ErrNotFound
		}
		return domain.WishlistItem{}, err
	}
	wid, err := s.Repo.Ensure(ctx, userID, uuid.NewString())
	if err != nil {
		return domain.WishlistItem{}, err
	}
	item := domain.WishlistItem{
		ID: uuid.NewString(), ProductID: p.ID, Name: p.Name, Price: p.Price,
		Image: p.Image, Description: p.Description, CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Add(ctx, wid, item.ID, p.ID, item.CreatedAt); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.WishlistItem{}, ErrConflict
		}
		return domain.WishlistItem{}, err
	}
	return item, nil
}

// Unsave removes an item from the user's own wishlist.
func (s *WishlistService) Unsave(ctx context.Context, userID, itemID string) error {
	err := s.Repo.RemoveForUser(ctx, userID, itemID)
	if repos.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
