package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func protectedRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", m.RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextEmailKey))
	})
	return router
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	m := NewManager(testConfig(), &stubUserStore{})
	router := protectedRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if payload := decodePayload(t, rec); payload["code"] != "UNAUTHORIZED" {
		t.Fatalf("unexpected code: %v", payload["code"])
	}
}

func TestRequireSessionWithGarbageToken(t *testing.T) {
	m := NewManager(testConfig(), &stubUserStore{})
	router := protectedRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if payload := decodePayload(t, rec); payload["code"] != "FORBIDDEN" {
		t.Fatalf("unexpected code: %v", payload["code"])
	}
}

func TestRequireSessionWithExpiredToken(t *testing.T) {
	m := NewManager(testConfig(), &stubUserStore{})
	router := protectedRouter(m)

	raw, err := GenerateToken("s@example.com", []byte("test-secret"), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRequireSessionWithValidToken(t *testing.T) {
	m := NewManager(testConfig(), &stubUserStore{})
	router := protectedRouter(m)

	raw, err := GenerateToken("s@example.com", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "s@example.com" {
		t.Fatalf("handler did not receive email from context: %q", rec.Body.String())
	}
}

func TestLogoutDoesNotRevokeIssuedTokens(t *testing.T) {
	// ログアウトはクッキーを消すだけで、取得済みトークンは期限まで有効なまま
	m := NewManager(testConfig(), &stubUserStore{})
	router := protectedRouter(m)

	raw, err := GenerateToken("s@example.com", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if rec := postJSON(m.Logout, "/logout", ""); rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("token issued before logout should still validate: %d", rec.Code)
	}
}
