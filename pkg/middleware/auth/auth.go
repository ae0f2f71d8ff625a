package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcore/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	accessCookie = "accessToken"
)

var ErrUnauthorized = errors.New("unauthorized")

type Verifier struct {
	JWTSecret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (v *Verifier) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return v.requireWithValidator(next, nil)
}

func (v *Verifier) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return v.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (v *Verifier) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, v.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxRole, claims.Role)
		return next(c)
	}
}

// bearerToken prefers the Authorization header and falls back to the access cookie.
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if ck, err := c.Cookie(accessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func UserID(c echo.Context) (string, error) {
	s, ok := c.Get(ctxUserID).(string)
	if !ok || s == "" {
		return "", ErrUnauthorized
	}
	return s, nil
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ctxRole).(string)
	return role == tokens.RoleAdmin
}
