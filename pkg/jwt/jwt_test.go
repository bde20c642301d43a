package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Sign(42, "reader@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)

	id, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "reader@example.com", claims.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Sign(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Sign(1, "a@example.com")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Verify("not.a.token")
	assert.Error(t, err)
}

func TestAccountIDRejectsNonNumericSubject(t *testing.T) {
	c := &Claims{}
	c.Subject = "abc"

	_, err := c.AccountID()
	assert.Error(t, err)
}
