package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/usecase"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, sessionID string) (*entity.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, sessionID string) (*entity.User, error) {
	return m.AuthenticateFunc(ctx, sessionID)
}

const cookieName = "sid"

func newEngine(auth Authenticator, codec *jwtmw.Codec) *gin.Engine {
	r := gin.New()
	r.Use(jwtmw.SessionCookie(codec, cookieName), LoadUser(auth, cookieName))
	r.GET("/whoami", func(c *gin.Context) {
		v, ok := web.CurrentViewer(c)
		if !ok {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, v.Email)
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) { c.String(http.StatusOK, "secret") })
	r.GET("/login", GuestOnly(), func(c *gin.Context) { c.String(http.StatusOK, "login form") })
	return r
}

func requestWithSession(t *testing.T, codec *jwtmw.Codec, path, sessionID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		token, err := codec.GenerateToken(sessionID, 1, time.Now().Add(time.Hour))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	return req
}

func TestLoadUser(t *testing.T) {
	codec := jwtmw.NewCodec("test-secret")

	tests := []struct {
		name          string
		sessionID     string
		authErr       error
		expectedBody  string
		expectCleared bool
	}{
		{name: "no cookie", expectedBody: "guest"},
		{name: "live session", sessionID: "s1", expectedBody: "ann@example.com"},
		{name: "revoked session", sessionID: "s1", authErr: usecase.ErrSessionRevoked, expectedBody: "guest", expectCleared: true},
		{name: "expired session", sessionID: "s1", authErr: usecase.ErrSessionExpired, expectedBody: "guest", expectCleared: true},
		{name: "store failure keeps cookie", sessionID: "s1", authErr: errors.New("redis down"), expectedBody: "guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthenticator{
				AuthenticateFunc: func(ctx context.Context, sessionID string) (*entity.User, error) {
					assert.Equal(t, tt.sessionID, sessionID)
					if tt.authErr != nil {
						return nil, tt.authErr
					}
					return &entity.User{ID: 1, Name: "Ann", Email: "ann@example.com"}, nil
				},
			}
			r := newEngine(auth, codec)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, requestWithSession(t, codec, "/whoami", tt.sessionID))

			assert.Equal(t, tt.expectedBody, w.Body.String())
			cleared := false
			for _, ck := range w.Result().Cookies() {
				if ck.Name == cookieName && ck.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.expectCleared, cleared)
		})
	}
}

func TestGates(t *testing.T) {
	codec := jwtmw.NewCodec("test-secret")
	auth := &mockAuthenticator{
		AuthenticateFunc: func(ctx context.Context, sessionID string) (*entity.User, error) {
			return &entity.User{ID: 1, Email: "ann@example.com"}, nil
		},
	}
	r := newEngine(auth, codec)

	tests := []struct {
		name         string
		path         string
		sessionID    string
		expectedCode int
		expectedLoc  string
	}{
		{name: "private as guest", path: "/private", expectedCode: http.StatusFound, expectedLoc: "/login"},
		{name: "private logged in", path: "/private", sessionID: "s1", expectedCode: http.StatusOK},
		{name: "login as guest", path: "/login", expectedCode: http.StatusOK},
		{name: "login logged in", path: "/login", sessionID: "s1", expectedCode: http.StatusFound, expectedLoc: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, requestWithSession(t, codec, tt.path, tt.sessionID))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedLoc, w.Header().Get("Location"))
		})
	}
}
