package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aquatrack/internal/config"
	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/middleware"
	"aquatrack/internal/models"
	"aquatrack/internal/oauth"
	"aquatrack/internal/services"
)

const (
	refreshCookieName = "refreshToken"
	stateCookieName   = "oauthState"
)

// GoogleAuthenticator abstracts the Google OAuth client for testability.
type GoogleAuthenticator interface {
	AuthURL(state string) string
	FetchProfile(ctx context.Context, code string) (*oauth.Profile, error)
}

// AuthHandler handles the session lifecycle: register, login, refresh,
// logout, current user, and the Google OAuth flow.
type AuthHandler struct {
	users  services.UserServicer
	tokens *middleware.TokenManager
	google GoogleAuthenticator
	cfg    *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServicer, tokens *middleware.TokenManager, google GoogleAuthenticator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, google: google, cfg: cfg}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileResponse is the fixed profile projection returned by login,
// refresh, and current-user.
type ProfileResponse struct {
	Email                 string        `json:"email"`
	Name                  string        `json:"name"`
	Weight                float64       `json:"weight"`
	DailyActiveTime       float64       `json:"daily_active_time"`
	DailyWaterConsumption float64       `json:"daily_water_consumption"`
	Gender                models.Gender `json:"gender"`
	Photo                 *string       `json:"photo"`
}

func profileResponse(user *models.User) ProfileResponse {
	return ProfileResponse{
		Email:                 user.Email,
		Name:                  user.Name,
		Weight:                user.Weight,
		DailyActiveTime:       user.DailyActiveTime,
		DailyWaterConsumption: user.DailyWaterConsumption,
		Gender:                user.Gender,
		Photo:                 user.Photo,
	}
}

// AuthResponse represents the authentication response with token.
type AuthResponse struct {
	Token string          `json:"token"`
	User  ProfileResponse `json:"user"`
}

// issueSession generates an access/refresh pair, persists the access token on
// the user row (overwriting any prior one), and sets the refresh cookie.
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) (string, error) {
	accessToken, err := h.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(user)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := h.users.StoreAccessToken(user.ID, accessToken); err != nil {
		return "", err
	}

	h.setRefreshCookie(c, refreshToken, int(h.tokens.RefreshTTL().Seconds()))
	return accessToken, nil
}

// setRefreshCookie applies the one authoritative cookie policy:
// secure only in production, SameSite=None in production and Lax otherwise.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	if h.cfg.IsProduction() {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", h.cfg.IsProduction(), true)
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} map[string]interface{} "Created user email"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email in use"
// @Router      /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.users.Register(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"email": user.Email,
		},
	})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user, set the refresh cookie, and return an access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.users.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, err := h.issueSession(c, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: accessToken,
		User:  profileResponse(user),
	})
}

// Refresh rotates the session
// @Summary     Refresh the session
// @Description Exchange a valid refresh cookie for a fresh token pair
// @Tags        auth
// @Produce     json
// @Success     200 {object} map[string]string "New access token"
// @Failure     401 {object} ErrorResponse "Missing or invalid refresh token"
// @Router      /users/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Refresh token is missing"))
		return
	}

	claims, err := h.tokens.ParseRefreshToken(cookie)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil {
		// The referenced account is gone; the token no longer grants anything.
		respondWithError(c, apperrors.ErrInvalidToken)
		return
	}

	accessToken, err := h.issueSession(c, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": accessToken})
}

// Logout ends the session
// @Summary     Logout
// @Description Clear the persisted access token and the refresh cookie
// @Tags        auth
// @Produce     json
// @Success     200 {object} map[string]string "Logout success"
// @Failure     401 {object} ErrorResponse "Missing refresh cookie"
// @Router      /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Refresh token is missing"))
		return
	}

	// Best effort: an undecodable token means the session is already useless,
	// so logout still reports success.
	if claims, err := h.tokens.ParseRefreshToken(cookie); err == nil {
		if err := h.users.ClearAccessToken(claims.UserID); err != nil {
			respondWithError(c, err)
			return
		}
	}

	h.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logout success"})
}

// Current returns the authenticated user's profile
// @Summary     Current user
// @Description Get the authenticated user's profile projection
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ProfileResponse "User profile"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/current [get]
func (h *AuthHandler) Current(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

// GoogleAuth starts the OAuth flow
// @Summary     Google OAuth entry
// @Description Redirect to the Google consent page
// @Tags        auth
// @Success     302
// @Router      /users/google [get]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state := uuid.New().String()
	h.setStateCookie(c, state)
	c.Redirect(http.StatusFound, h.google.AuthURL(state))
}

// GoogleRedirect finishes the OAuth flow
// @Summary     Google OAuth callback
// @Description Exchange the authorization code and redirect to the frontend with a token
// @Tags        auth
// @Success     302
// @Failure     400 {object} ErrorResponse "Missing code"
// @Failure     500 {object} ErrorResponse "Provider error"
// @Router      /users/google-redirect [get]
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Authorization code is required"))
		return
	}

	if state, err := c.Cookie(stateCookieName); err != nil || state == "" || state != c.Query("state") {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "OAuth state mismatch"))
		return
	}
	h.clearStateCookie(c)

	profile, err := h.google.FetchProfile(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrOAuthExchange, err))
		return
	}

	user, err := h.users.FindOrCreateGoogleUser(profile.Email, profile.Name, profile.Picture)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, err := h.issueSession(c, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	target := h.cfg.FrontendURL + "?" + url.Values{
		"token": {accessToken},
		"email": {user.Email},
	}.Encode()
	c.Redirect(http.StatusFound, target)
}

func (h *AuthHandler) setStateCookie(c *gin.Context, state string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, 600, "/", "", h.cfg.IsProduction(), true)
}

func (h *AuthHandler) clearStateCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
}
