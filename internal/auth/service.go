package auth

import (
	"errors"
	"fmt"

	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Principal string `json:"principal"`
	Password  string `json:"password"`
}

// RegisterInput for register request body.
type RegisterInput struct {
	Principal   string `json:"principal"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// SessionPrincipalShape is the object stored in session and returned by /me.
type SessionPrincipalShape struct {
	Principal   string `json:"principal"`
	DisplayName string `json:"display_name"`
}

// PrincipalFinder abstracts principal lookup by id+password (for production GORM or test doubles).
type PrincipalFinder interface {
	FindByPrincipalAndPassword(principal, password string) (*domain.Principal, error)
}

// GormPrincipalFinder implements PrincipalFinder using GORM and bcrypt.
type GormPrincipalFinder struct{ DB *gorm.DB }

func (g *GormPrincipalFinder) FindByPrincipalAndPassword(principal, password string) (*domain.Principal, error) {
	return LoginPrincipal(g.DB, LoginInput{Principal: principal, Password: password})
}

// RegisterPrincipal validates input and stores a new principal with a bcrypt password hash.
func RegisterPrincipal(db *gorm.DB, input RegisterInput) (*domain.Principal, error) {
	if input.Principal == "" || input.Password == "" {
		return nil, ErrPrincipalPasswordRequired
	}
	if !validation.IsValidPrincipal(input.Principal) {
		return nil, ErrInvalidPrincipal
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}
	if !validation.IsValidDisplayName(input.DisplayName) {
		return nil, ErrInvalidDisplayName
	}

	var n int64
	if err := db.Model(&domain.Principal{}).Where("principal = ?", input.Principal).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrPrincipalExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := domain.Principal{
		Principal:    input.Principal,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LoginPrincipal finds the principal and verifies password. Returns principal for session or error.
func LoginPrincipal(db *gorm.DB, input LoginInput) (*domain.Principal, error) {
	if input.Principal == "" || input.Password == "" {
		return nil, ErrPrincipalPasswordRequired
	}
	var p domain.Principal
	if err := db.Where("principal = ?", input.Principal).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPrincipal
		}
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, ErrInvalidPrincipal
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &p, nil
}

// VerifyPrincipal validates the session value and returns the shape for /me.
func VerifyPrincipal(sessionUser interface{}) (*SessionPrincipalShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	principal, _ := m["principal"].(string)
	if principal == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionPrincipalShape{
		Principal:   principal,
		DisplayName: str(m["display_name"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
