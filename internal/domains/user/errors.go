package user

import "github.com/Vitaee/books-api/internal/shared/apperrors"

var (
	// ErrAccountExists is returned for a duplicate email, whether caught by
	// the pre-check or by the unique index at insert time.
	ErrAccountExists = apperrors.Conflict("account exists")

	// ErrInvalidCredentials carries one message for both an unknown email
	// and a wrong password, so responses cannot be used to enumerate
	// accounts.
	ErrInvalidCredentials = apperrors.Unauthorized("invalid email or password")

	// ErrCreateFailed hides the concrete persistence failure from clients.
	ErrCreateFailed = apperrors.BadRequest("failed to create account")

	ErrAccountNotFound = apperrors.NotFound("account not found")
)
