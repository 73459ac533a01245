package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ginpkg "github.com/gin-gonic/gin"
	golangjwt "github.com/golang-jwt/jwt/v5"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/jwt"
)

const testSecret = "shared-hub-secret"

func init() {
	ginpkg.SetMode(ginpkg.TestMode)
}

// protectedRouter mounts the middleware the way the API does: on a group,
// with probes left outside.
func protectedRouter(capturedSub *string) *ginpkg.Engine {
	router := ginpkg.New()
	router.GET("/health", func(c *ginpkg.Context) { c.Status(http.StatusOK) })

	group := router.Group("/api/v1")
	group.Use(jwt.Middleware(testSecret))
	group.GET("/stats", func(c *ginpkg.Context) {
		if capturedSub != nil {
			if claims, ok := jwt.GetClaims(c); ok {
				*capturedSub = claims.Sub
			}
		}
		c.Status(http.StatusOK)
	})
	return router
}

func signedToken(t *testing.T, secret, subject string) string {
	t.Helper()

	token := golangjwt.NewWithClaims(golangjwt.SigningMethodHS256, golangjwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func getStats(router *ginpkg.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_ValidTokenPasses(t *testing.T) {
	var sub string
	router := protectedRouter(&sub)

	w := getStats(router, "Bearer "+signedToken(t, testSecret, "editor@foxx"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if sub != "editor@foxx" {
		t.Errorf("handler saw subject %q, want %q", sub, "editor@foxx")
	}
}

func TestMiddleware_MissingHeaderRejected(t *testing.T) {
	w := getStats(protectedRouter(nil), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMiddleware_MalformedHeaderRejected(t *testing.T) {
	for _, header := range []string{"Bearer", "Bearer ", "Basic dXNlcg==", "token-without-scheme"} {
		if w := getStats(protectedRouter(nil), header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestMiddleware_WrongSecretRejected(t *testing.T) {
	w := getStats(protectedRouter(nil), "Bearer "+signedToken(t, "some-other-secret", "editor@foxx"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMiddleware_ExpiredTokenRejected(t *testing.T) {
	token := golangjwt.NewWithClaims(golangjwt.SigningMethodHS256, golangjwt.MapClaims{
		"sub": "editor@foxx",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if w := getStats(protectedRouter(nil), "Bearer "+signed); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMiddleware_ProbesStayOpen(t *testing.T) {
	router := protectedRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("unauthenticated health probe: status = %d, want %d", w.Code, http.StatusOK)
	}
}
