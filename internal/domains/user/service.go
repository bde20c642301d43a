package user

import (
	"context"

	"github.com/Vitaee/books-api/pkg/jwt"
)

// Service is the identity and credential contract.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)

	// ValidateToken resolves verified claims to the live account. A deleted
	// account yields (nil, nil); the caller decides whether absent means
	// reject.
	ValidateToken(ctx context.Context, claims *jwt.Claims) (*Account, error)

	GetProfile(ctx context.Context, accountID int64) (*AccountDTO, error)
	Deactivate(ctx context.Context, accountID int64) error
}
