package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/config"
	"github.com/an-furnish/furnish-api/logger"
	"github.com/an-furnish/furnish-api/services"
)

const (
	userIDKey          = "user_id"
	validatedClaimsKey = "validated_claims"
	adminClaimsKey     = "admin_claims"
	accessTokenKey     = "access_token"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate does nothing, but we need it to satisfy validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	result := strings.Split(c.Scope, " ")
	for i := range result {
		if result[i] == expectedScope {
			return true
		}
	}

	return false
}

// EnsureValidToken validates Auth0-issued RS256 tokens against the tenant's JWKS.
func EnsureValidToken(cfg *config.Config, logg *logger.Logger) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	if logg == nil {
		logg = logger.Nop()
	}
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "jwt validation failed")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"Failed to validate JWT."}`))
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		validated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			validated = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Request = r
			c.Set(userIDKey, token.RegisteredClaims.Subject)
			c.Set(validatedClaimsKey, token)
			if raw, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil {
				c.Set(accessTokenKey, raw)
			}

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !validated {
			c.Abort()
		}
	}, nil
}

// LocalAuth validates HS256 tokens issued by the admin login endpoint
func LocalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := jwtmiddleware.AuthHeaderTokenExtractor(c.Request)
		if err != nil {
			WriteError(c, apperrors.Unauthorized("Authorization header format must be Bearer {token}"))
			return
		}
		if raw == "" {
			WriteError(c, apperrors.Unauthorized("Authentication required"))
			return
		}

		claims, err := authService.ParseToken(raw)
		if err != nil {
			logg := LoggerFrom(c)
			logg.Warn(logg.WithField(c.Request.Context(), "error", err.Error()), "admin token rejected")
			WriteError(c, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(adminClaimsKey, claims)
		c.Set(accessTokenKey, raw)
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetClaims extracts the validated Auth0 claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(validatedClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// GetAdminClaims extracts locally issued admin claims from the Gin context
func GetAdminClaims(c *gin.Context) (*services.AdminClaims, error) {
	claims, exists := c.Get(adminClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	adminClaims, ok := claims.(*services.AdminClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return adminClaims, nil
}

// GetAccessToken returns the raw bearer token of the request
func GetAccessToken(c *gin.Context) (string, error) {
	token, exists := c.Get(accessTokenKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Access token not found in context"}
	}

	tokenStr, ok := token.(string)
	if !ok || tokenStr == "" {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "Access token is not a string"}
	}

	return tokenStr, nil
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			WriteError(c, apperrors.Unauthorized("Could not retrieve token claims"))
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			WriteError(c, apperrors.Forbidden("Insufficient permissions to access this resource"))
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
