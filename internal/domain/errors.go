package domain

import "errors"

var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Transaction errors
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidCategory = errors.New("invalid expense category")
	ErrInvalidSource   = errors.New("invalid top-up source")
	ErrInvalidTitle    = errors.New("invalid transaction title")

	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
