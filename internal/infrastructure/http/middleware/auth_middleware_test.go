package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
)

func newProtectedServer(manager *jwt.Manager) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var appErr errors.AppError
		if stdErrors.As(err, &appErr) {
			_ = c.JSON(appErr.HTTPCode, map[string]interface{}{"code": appErr.Code})
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
	g := e.Group("", EchoAuth(manager), RequireRole(jwt.RoleOperator))
	g.GET("/private", func(c echo.Context) error {
		claims, _ := GetClaims(c)
		return c.String(http.StatusOK, claims.Subject)
	})
	return e
}

func doGet(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEchoAuth(t *testing.T) {
	manager := jwt.NewManager("secret", time.Minute, "meeting-agent")
	e := newProtectedServer(manager)

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(e, "").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(e, "not-a-jwt").Code)
	})

	t.Run("operator token", func(t *testing.T) {
		token, err := manager.GenerateAccessToken("ops@example.com", jwt.RoleOperator)
		require.NoError(t, err)

		rec := doGet(e, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ops@example.com", rec.Body.String())
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewManager("secret", -time.Minute, "meeting-agent")
		token, err := expired.GenerateAccessToken("ops@example.com", jwt.RoleOperator)
		require.NoError(t, err)

		rec := doGet(e, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "2002")
	})

	t.Run("wrong role", func(t *testing.T) {
		token, err := manager.GenerateAccessToken("someone", "viewer")
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, doGet(e, token).Code)
	})
}
