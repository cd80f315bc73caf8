package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"aquatrack/internal/config"
	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims represents the claims carried by both token kinds.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates the access/refresh token pair. Access and
// refresh tokens are signed with distinct secrets, so one can never be
// validated as the other even if the token_type claim were forged.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a TokenManager from the application configuration.
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// RefreshTTL returns the refresh token lifetime, used for the cookie max age.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// GenerateAccessToken generates a short-lived JWT access token for a user.
func (tm *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	return tm.generate(user, tokenTypeAccess, tm.accessSecret, tm.accessTTL)
}

// GenerateRefreshToken generates a long-lived JWT refresh token for a user.
func (tm *TokenManager) GenerateRefreshToken(user *models.User) (string, error) {
	return tm.generate(user, tokenTypeRefresh, tm.refreshSecret, tm.refreshTTL)
}

func (tm *TokenManager) generate(user *models.User, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "aquatrack-api",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken parses and validates an access token.
func (tm *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return tm.parse(tokenString, tokenTypeAccess, tm.accessSecret)
}

// ParseRefreshToken parses and validates a refresh token.
func (tm *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return tm.parse(tokenString, tokenTypeRefresh, tm.refreshSecret)
}

func (tm *TokenManager) parse(tokenString, tokenType string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	if claims.TokenType != tokenType {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// Auth verifies the Bearer access token and sets the user ID in the context.
func Auth(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"code":    apperrors.ErrUnauthorized.Code,
				"message": "Authorization header is required",
			}})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"code":    apperrors.ErrUnauthorized.Code,
				"message": "Invalid authorization header format",
			}})
			c.Abort()
			return
		}

		claims, err := tm.ParseAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"code":    apperrors.ErrInvalidToken.Code,
				"message": apperrors.ErrInvalidToken.Message,
			}})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}
