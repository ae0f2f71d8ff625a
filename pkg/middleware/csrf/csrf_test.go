package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPrefixes: []string{"/health/"}}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/cart", ok)
	e.POST("/cart", ok)
	e.POST("/health/live", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec := serve(newServer(), httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	require.NotEmpty(t, rec.Result().Cookies())
}

func TestUnsafeMethodNeedsMatchingToken(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusOK, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusForbidden, serve(e, req).Code)
}

func TestBearerAndSkippedPathsPass(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	require.Equal(t, http.StatusOK, serve(e, req).Code)

	require.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodPost, "/health/live", nil)).Code)
}
