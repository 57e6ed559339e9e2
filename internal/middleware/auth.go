package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	customerIDKey = "customer_id"
	authTokenKey  = "auth_token"
)

// AuthConfig holds the JWT verification settings.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// BearerAuth verifies the customer's bearer token and stashes the
// customer ID and the raw token on the request context. The raw token is
// forwarded on every storefront backend call.
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Secret), nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauth(c, "invalid_token", "claims parsing error")
			return
		}

		if cfg.Issuer != "" && claims["iss"] != cfg.Issuer {
			unauth(c, "invalid_token", "iss mismatch")
			return
		}
		if cfg.Audience != "" && claims["aud"] != cfg.Audience {
			unauth(c, "invalid_token", "aud mismatch")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			unauth(c, "invalid_token", "missing subject")
			return
		}

		c.Set(customerIDKey, sub)
		c.Set(authTokenKey, raw)
		c.Next()
	}
}

// CustomerID returns the authenticated customer's ID.
func CustomerID(c *gin.Context) string {
	return c.GetString(customerIDKey)
}

// Token returns the raw bearer token for forwarding to the backend.
func Token(c *gin.Context) string {
	return c.GetString(authTokenKey)
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}
