package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cocolabs/internal/domain"
	"cocolabs/internal/repos"
	"cocolabs/internal/validate"
)

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *Tokens
}

func NewAuthService(users *repos.UserRepo, tokens *Tokens) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

// Register creates the account with an empty profile and wishlist.
// A taken email yields ErrConflict.
func (s *AuthService) Register(ctx context.Context, in validate.RegisterInput) (*domain.User, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		Hash:      string(h),
		Role:      "USER",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Users.Create(ctx, u, uuid.NewString()); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

// Login checks the credentials, binds the session to the user and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, "", ErrBadCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, "", err
	}
	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

// CurrentUser resolves the user bound to sid; ErrNotFound for anonymous sessions.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(ctx, sid)
	if repos.IsNotFound(err) {
		return nil, ErrNotFound
	}
	return u, err
}

// UserFromToken resolves the user named by a bearer token.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*domain.User, error) {
	uid, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrNotFound
	}
	u, err := s.Users.ByID(ctx, uid)
	if repos.IsNotFound(err) {
		return nil, ErrNotFound
	}
	return u, err
}
