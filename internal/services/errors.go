package services

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
	ErrBadCreds  = errors.New("invalid email or password")
	ErrEmptyCart = errors.New("cart is empty")
)
