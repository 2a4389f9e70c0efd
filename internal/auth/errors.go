package auth

import "errors"

var (
	ErrPrincipalPasswordRequired = errors.New("Principal and password are required")
	ErrInvalidPrincipal          = errors.New("Invalid Principal")
	ErrWeakPassword              = errors.New("Password must be at least 8 characters and include a letter, a number and a special character")
	ErrInvalidDisplayName        = errors.New("Display name may contain letters, spaces, hyphens and apostrophes only")
	ErrPrincipalExists           = errors.New("Principal already registered")
	ErrIncorrectPassword         = errors.New("Incorrect Password")
	ErrNotAuthenticated          = errors.New("Not authenticated")
)
