package services

import (
	"context"

	"cocolabs/internal/domain"
	"cocolabs/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) Search(ctx context.Context, q, category string, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.Search(ctx, q, category, pageSize, offset)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if repos.IsNotFound(err) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

// RecordView notes that a signed-in user opened a product page.
func (s *CatalogService) RecordView(ctx context.Context, userID string, productID int64) error {
	return s.Prods.RecordView(ctx, userID, productID)
}
