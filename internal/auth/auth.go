// Package auth verifies the bearer tokens issued by the external identity
// provider. Token verification is exposed as an interface so handlers and
// tests never depend on the JWKS machinery.
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Claims are the verified token claims a request acts under.
type Claims struct {
	Subject  string
	Nickname string
	Email    string
}

// AuthError is an authentication failure. Its JSON form is the response
// body, mirroring the provider's own error shape.
type AuthError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Status      int    `json:"-"`
}

func (e *AuthError) Error() string { return e.Code + ": " + e.Description }

// Verifier validates the bearer token on a request and returns its claims.
type Verifier interface {
	Verify(r *http.Request) (*Claims, *AuthError)
}

const claimsKey = "claims"

// Middleware rejects requests without a valid bearer token and stores the
// verified claims on the context.
func Middleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, aerr := v.Verify(c.Request)
		if aerr != nil {
			c.AbortWithStatusJSON(aerr.Status, aerr)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// FromContext returns the claims stored by Middleware.
func FromContext(c *gin.Context) *Claims {
	claims, _ := c.MustGet(claimsKey).(*Claims)
	return claims
}
