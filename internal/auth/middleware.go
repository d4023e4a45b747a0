package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

const accountKey = "auth.account"

// AccountLoader looks up the account a token was issued to
type AccountLoader interface {
	GetAccount(ctx context.Context, id string) (model.Account, error)
}

// Authenticate resolves the session token from the token cookie or a Bearer
// header and stores the account on the request context. Requests without a
// valid session are rejected with 401.
func Authenticate(tokens *TokenManager, accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			abort(c, http.StatusUnauthorized, fmt.Errorf("%w - no session token", auctionerrors.ErrUnauthorized), "user not authenticated")
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, err, "user not authenticated")
			return
		}

		acct, err := accounts.GetAccount(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, auctionerrors.ErrNotFound) {
				abort(c, http.StatusUnauthorized, fmt.Errorf("%w - account no longer exists", auctionerrors.ErrUnauthorized), "user not authenticated")
				return
			}
			abort(c, http.StatusInternalServerError, err, "internal server error")
			return
		}

		c.Set(accountKey, acct)
		c.Next()
	}
}

// RequireRole rejects authenticated accounts whose role is not listed
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, ok := CurrentAccount(c)
		if !ok {
			abort(c, http.StatusUnauthorized, auctionerrors.ErrUnauthorized, "user not authenticated")
			return
		}
		for _, r := range roles {
			if acct.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden,
			fmt.Errorf("%w - %s not allowed to access this resource", auctionerrors.ErrForbidden, acct.Role),
			fmt.Sprintf("%s not allowed to access this resource", acct.Role))
	}
}

// CurrentAccount returns the account stored by Authenticate
func CurrentAccount(c *gin.Context) (model.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return model.Account{}, false
	}
	acct, ok := v.(model.Account)
	return acct, ok
}

// SetAccount stores acct on the context as Authenticate would
func SetAccount(c *gin.Context, acct model.Account) {
	c.Set(accountKey, acct)
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func abort(c *gin.Context, status int, err error, message string) {
	utils.JSONError(c, status, err, message)
	c.Abort()
	utils.Warn("auth: request rejected", map[string]any{
		"path":   c.FullPath(),
		"status": status,
		"error":  err.Error(),
	})
}
