package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"steaklog/internal/config"
	"steaklog/internal/domain"
	"steaklog/internal/store"
	"steaklog/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newIdentityRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := store.Open(context.Background(), config.DriverSQLite, filepath.Join(t.TempDir(), "steak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InsertUser(context.Background(), &domain.User{Username: "alice", Password: "h"}))

	r := gin.New()
	r.Use(ResolveIdentity(s, testSecret))
	r.GET("/whoami", RequireIdentity(), func(c *gin.Context) {
		username, _ := Username(c)
		c.String(http.StatusOK, username)
	})
	return r, s
}

func token(t *testing.T, username string) string {
	t.Helper()
	tok, _, err := utils.GenerateSessionToken(username, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestIdentity_FromCookie(t *testing.T) {
	r, _ := newIdentityRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token(t, "alice")})
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", rr.Body.String())
}

func TestIdentity_FromHeaderFallback(t *testing.T) {
	r, _ := newIdentityRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(IdentityHeader, token(t, "alice"))
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", rr.Body.String())
}

func TestIdentity_Missing(t *testing.T) {
	r, _ := newIdentityRouter(t)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentity_ForgedPlainUsername(t *testing.T) {
	r, _ := newIdentityRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "alice"})
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentity_UnknownUser(t *testing.T) {
	r, _ := newIdentityRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(IdentityHeader, token(t, "mallory"))
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
