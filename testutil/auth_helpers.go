package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
)

// ValidatedClaims builds the claims the Auth0 middleware stores for a verified token
func ValidatedClaims(subject, issuer string, custom validator.CustomClaims) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: custom,
	}
}

// SetAuthContext populates c the way the Auth0 middleware does after a successful validation
func SetAuthContext(c *gin.Context, claims *validator.ValidatedClaims, accessToken string) {
	c.Set("user_id", claims.RegisteredClaims.Subject)
	c.Set("validated_claims", claims)
	c.Set("access_token", accessToken)
}

// MockAuthMiddleware authenticates every request with claims
func MockAuthMiddleware(claims *validator.ValidatedClaims, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetAuthContext(c, claims, accessToken)
		c.Next()
	}
}
