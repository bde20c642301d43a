package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vitaee/books-api/internal/domains/user"
	"github.com/Vitaee/books-api/internal/repository"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
	"github.com/Vitaee/books-api/pkg/jwt"
)

// bcryptCost 12 lands around 100-300ms per hash on current hardware, slow
// enough to blunt offline guessing.
const bcryptCost = 12

type authService struct {
	repo   user.Repository
	tokens *jwt.Manager
	log    zerolog.Logger
}

// NewAuthService wires the identity service. The logger is an explicit
// dependency, injected per component.
func NewAuthService(repo user.Repository, tokens *jwt.Manager, log zerolog.Logger) user.Service {
	return &authService{
		repo:   repo,
		tokens: tokens,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// NormalizeEmail trims and lowercases so "A@B.COM" and "a@b.com" identify
// the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	email := NormalizeEmail(req.Email)

	// Best-effort pre-check for a clean conflict message. The unique index
	// on email is the real guarantee; the race below is still handled.
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.log.Error().Err(err).Msg("credential hashing failed")
		return nil, user.ErrCreateFailed
	}

	// A deactivated account still holds its address under the unique index.
	// Registering again revives it with the new credentials.
	if revived, err := s.reviveDeleted(ctx, email, string(hash)); err != nil || revived != nil {
		return revived, err
	}

	account, err := s.repo.Create(ctx, repository.NewUpdates().
		Set("email", email).
		Set("password_hash", string(hash)))
	if err != nil {
		// Two concurrent registrations can both pass the pre-check; the
		// constraint violation from the loser maps to the same conflict.
		if repository.IsUniqueViolation(err) {
			return nil, user.ErrAccountExists
		}
		s.log.Error().Err(err).Msg("account creation failed")
		return nil, user.ErrCreateFailed
	}

	token, err := s.tokens.Sign(account.ID, account.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("token signing failed")
		return nil, user.ErrCreateFailed
	}

	s.log.Info().Int64("account_id", account.ID).Msg("account_registered")
	return &user.AuthResponse{AccountID: account.ID, Email: account.Email, Token: token}, nil
}

// reviveDeleted restores a soft-deleted account holding the address and
// swaps in the new credential hash. Returns (nil, nil) when no such account
// exists.
func (s *authService) reviveDeleted(ctx context.Context, email, hash string) (*user.AuthResponse, error) {
	deleted, err := s.repo.FindDeletedByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, nil
	}

	// Restore and credential swap commit together; a failure leaves the
	// account deactivated instead of live under its old password.
	if err := s.repo.Revive(ctx, deleted.ID, hash); err != nil {
		return nil, err
	}

	token, err := s.tokens.Sign(deleted.ID, email)
	if err != nil {
		s.log.Error().Err(err).Msg("token signing failed")
		return nil, user.ErrCreateFailed
	}

	s.log.Info().Int64("account_id", deleted.ID).Msg("account_reactivated")
	return &user.AuthResponse{AccountID: deleted.ID, Email: email, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	email := NormalizeEmail(req.Email)

	account, err := s.repo.FindByEmailWithHash(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		// Same error shape as a wrong password.
		s.log.Info().Str("email", email).Msg("login_failed")
		return nil, user.ErrInvalidCredentials
	}

	// bcrypt comparison is constant-time over the hash.
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Info().Int64("account_id", account.ID).Msg("login_failed")
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(account.ID, account.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("token signing failed")
		return nil, user.ErrInvalidCredentials
	}

	s.log.Info().Int64("account_id", account.ID).Msg("login_succeeded")
	return &user.AuthResponse{AccountID: account.ID, Email: account.Email, Token: token}, nil
}

func (s *authService) ValidateToken(ctx context.Context, claims *jwt.Claims) (*user.Account, error) {
	accountID, err := claims.AccountID()
	if err != nil {
		return nil, user.ErrInvalidCredentials
	}
	// Absent is not an error here: the account may have been deleted after
	// the token was issued.
	return s.repo.GetByID(ctx, accountID)
}

func (s *authService) GetProfile(ctx context.Context, accountID int64) (*user.AccountDTO, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, user.ErrAccountNotFound
	}
	dto := account.ToDTO()
	return &dto, nil
}

func (s *authService) Deactivate(ctx context.Context, accountID int64) error {
	affected, err := s.repo.SoftDelete(ctx, accountID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrAccountNotFound
	}
	s.log.Info().Int64("account_id", accountID).Msg("account_deactivated")
	return nil
}
