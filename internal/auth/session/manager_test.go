package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/clientbase/internal/clock"
	"github.com/smallbiznis/clientbase/internal/config"
	"github.com/stretchr/testify/assert"
)

func newContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestReadTokenPrefersCookie(t *testing.T) {
	m := NewManager(config.Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	c, _ := newContext(req)

	token, ok := m.ReadToken(c)
	assert.True(t, ok)
	assert.Equal(t, "cookie-token", token)
}

func TestReadTokenFallsBackToBearer(t *testing.T) {
	m := NewManager(config.Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer header-token")
	c, _ := newContext(req)

	token, ok := m.ReadToken(c)
	assert.True(t, ok)
	assert.Equal(t, "header-token", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	c, _ = newContext(req)
	_, ok = m.ReadToken(c)
	assert.False(t, ok)
}

func TestSetAndClearCookie(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(config.Config{AuthCookieSecure: true}, clock.NewFakeClock(now))

	c, w := newContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	m.Set(c, "abc", now.Add(time.Hour))
	header := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "auth-token=abc"))
	assert.Contains(t, header, "Max-Age=3600")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Lax")

	c, w = newContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	m.Clear(c)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
