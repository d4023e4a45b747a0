package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie that carries the session token
const TokenCookie = "token"

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}

// SetTokenCookie stores token in an http-only cookie that expires after ttl.
// A non-positive ttl clears the cookie.
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(ttl.Seconds())
	if ttl <= 0 {
		maxAge = -1
	}
	c.SetCookie(TokenCookie, token, maxAge, "/", "", false, true)
}
