package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irodion/concert-ticketing/internal/utils"
)

const testSecret = "unit-test-secret"

func runRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, reached
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec, reached := runRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	rec, reached := runRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 1, "FAN", 15)
	require.NoError(t, err)

	rec, reached := runRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTAuth_ValidTokenSetsClaims(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "BAND", 15)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		assert.Equal(t, float64(42), c.Get("user_id"))
		assert.Equal(t, "BAND", c.Get("role"))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"matching role", "ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"one of several", "BAND", []string{"FAN", "BAND"}, http.StatusOK},
		{"wrong role", "FAN", []string{"ADMIN"}, http.StatusForbidden},
		{"missing role", nil, []string{"ADMIN"}, http.StatusForbidden},
		{"non-string role", 7, []string{"ADMIN"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}

			h := RequireRole(tc.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestJWTAuthThenRequireRole(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 9, "FAN", 15)
	require.NoError(t, err)

	mw := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole("FAN")}
	rec, reached := runRequest(t, mw, "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)

	mw = []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole("ADMIN")}
	rec, reached = runRequest(t, mw, "Bearer "+at.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)
}
