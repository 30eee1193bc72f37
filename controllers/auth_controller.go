package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
	"github.com/an-furnish/furnish-api/config"
	"github.com/an-furnish/furnish-api/middleware"
	"github.com/an-furnish/furnish-api/services"
)

func localAuthService(c *gin.Context) (*services.AuthService, bool) {
	authService := services.GetAuthService()
	if authService == nil {
		middleware.WriteError(c, apperrors.Forbidden("Local admin accounts are disabled, sign in through Auth0"))
		return nil, false
	}
	return authService, true
}

// SetupAdmin handles POST /api/auth/setup - creates the first admin account
func SetupAdmin(c *gin.Context) {
	authService, ok := localAuthService(c)
	if !ok {
		return
	}

	var req services.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid request data"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	admin, err := authService.Setup(ctx, req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, admin)
}

// Login handles POST /api/auth/login - exchanges admin credentials for a bearer token
func Login(c *gin.Context) {
	authService, ok := localAuthService(c)
	if !ok {
		return
	}

	var req services.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, apperrors.Validation("Invalid request data"))
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	result, err := authService.Login(ctx, req)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMe handles GET /api/auth/me - the signed-in admin's profile
func GetMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		middleware.WriteError(c, apperrors.Unauthorized("Could not extract user ID from token"))
		return
	}

	if cfg := config.GetConfig(); cfg != nil && cfg.UsesAuth0() {
		accessToken, err := middleware.GetAccessToken(c)
		if err != nil {
			middleware.WriteError(c, apperrors.Unauthorized("Access token not found"))
			return
		}

		userInfo, err := services.NewAuth0Service(cfg).GetUserInfo(c.Request.Context(), accessToken)
		if err != nil {
			middleware.WriteErrorAs(c, apperrors.Wrap(apperrors.CodeDependency, err, "auth0 userinfo"),
				"Failed to fetch user information from Auth0")
			return
		}
		if userInfo.Sub == "" {
			userInfo.Sub = userID
		}

		c.JSON(http.StatusOK, userInfo)
		return
	}

	authService, ok := localAuthService(c)
	if !ok {
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	admin, err := authService.Profile(ctx, userID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, admin)
}
