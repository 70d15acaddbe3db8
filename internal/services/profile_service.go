package services

import (
	"context"
	"time"

	"cocolabs/internal/domain"
	"cocolabs/internal/repos"
	"cocolabs/internal/validate"
)

type ProfileService struct {
	Profiles *repos.ProfileRepo
}

func NewProfileService(p *repos.ProfileRepo) *ProfileService { return &ProfileService{Profiles: p} }

// Get returns nil without error when the user has no profile yet.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.Profiles.Get(ctx, userID)
	if repos.IsNotFound(err) {
		return nil, nil
	}
	return p, err
}

// Update applies the provided fields over the stored profile and saves it.
func (s *ProfileService) Update(ctx context.Context, userID string, in validate.ProfileInput) (*domain.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &domain.Profile{UserID: userID}
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Phone, in.Phone)
	set(&p.Address, in.Address)
	set(&p.City, in.City)
	set(&p.State, in.State)
	set(&p.ZipCode, in.ZipCode)
	set(&p.Country, in.Country)
	p.UpdatedAt = time.Now().UTC()

	if err := s.Profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
