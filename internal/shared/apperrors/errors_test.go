package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicatesMatchOnlyTheirType(t *testing.T) {
	validation := Validation("bad page %d", 0)
	conflict := Conflict("duplicate")
	unauthorized := Unauthorized("nope")
	notFound := NotFound("gone")
	badRequest := BadRequest("no")

	assert.True(t, IsValidation(validation))
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsUnauthorized(unauthorized))
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsBadRequest(badRequest))

	for _, err := range []error{conflict, unauthorized, notFound, badRequest} {
		assert.False(t, IsValidation(err))
	}
	assert.False(t, IsConflict(validation))
	assert.False(t, IsNotFound(conflict))
}

func TestValidationMessageFormatting(t *testing.T) {
	err := Validation("limit must be between %d and %d", 1, 100)
	assert.Equal(t, "limit must be between 1 and 100", err.Error())
}

func TestRepositoryErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Repository("books.create", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "books.create")

	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "books.create", repoErr.Op)
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Conflict("duplicate title"))
	assert.True(t, IsConflict(err))
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("bucket missing")
	err := Upstream("storage.upload", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage.upload")
}
