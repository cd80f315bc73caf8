package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"aquatrack/internal/config"
	"aquatrack/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  5 * 24 * time.Hour,
	}
}

func testUser(id uint) *models.User {
	u := &models.User{}
	u.ID = id
	return u
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testConfig())

	t.Run("access", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(testUser(42))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		claims, err := tm.ParseAccessToken(token)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims.UserID != 42 {
			t.Errorf("expected user 42, got %d", claims.UserID)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(testUser(7))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		claims, err := tm.ParseRefreshToken(token)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims.UserID != 7 {
			t.Errorf("expected user 7, got %d", claims.UserID)
		}
	})
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	tm := NewTokenManager(testConfig())

	refresh, err := tm.GenerateRefreshToken(testUser(1))
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	if _, err := tm.ParseAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}

	access, err := tm.GenerateAccessToken(testUser(1))
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	if _, err := tm.ParseRefreshToken(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tm := NewTokenManager(testConfig())
	otherCfg := testConfig()
	otherCfg.JWTRefreshSecret = "a-different-secret"
	other := NewTokenManager(otherCfg)

	token, err := other.GenerateRefreshToken(testUser(1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := tm.ParseRefreshToken(token); err == nil {
		t.Error("token signed under a different secret was accepted")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	tm := NewTokenManager(cfg)

	token, err := tm.GenerateAccessToken(testUser(1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := tm.ParseAccessToken(token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := NewTokenManager(testConfig())

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.GET("/protected", Auth(tm), func(c *gin.Context) {
			userID, _ := c.Get("userID")
			c.JSON(http.StatusOK, gin.H{"user_id": userID})
		})
		return r
	}

	t.Run("valid_token", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(testUser(5))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "NotBearer something")
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(testUser(5))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}
