package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Vitaee/books-api/internal/domains/user"
	"github.com/Vitaee/books-api/internal/shared/response"
	"github.com/Vitaee/books-api/pkg/jwt"
)

const (
	accountKey   = "account"
	accountIDKey = "account_id"
)

// Auth verifies the bearer token and resolves the account behind it. The
// database lookup means deactivated accounts are locked out immediately,
// even while their tokens are still within expiry.
func Auth(tokens *jwt.Manager, users user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		account, err := users.ValidateToken(c.Request.Context(), claims)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}
		if account == nil {
			response.Unauthorized(c, "account no longer exists")
			c.Abort()
			return
		}

		c.Set(accountKey, account)
		c.Set(accountIDKey, account.ID)
		c.Next()
	}
}

// CurrentAccount returns the account resolved by Auth, or nil outside an
// authenticated route.
func CurrentAccount(c *gin.Context) *user.Account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*user.Account)
	return account
}

// CurrentAccountID returns the authenticated account id, or 0 when absent.
func CurrentAccountID(c *gin.Context) int64 {
	return c.GetInt64(accountIDKey)
}
