package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/LetzTalk/internal/infra/appctx"
)

var errMissingToken = errors.New("missing jwt")

// JWTAuthMiddleware пропускает только запросы с валидным jwt.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := userIDFromRequest(c, secret)
			if errors.Is(err, errMissingToken) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or malformed jwt"})
			}

			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired jwt"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithUserID(c.Request().Context(), userID),
				),
			)

			return next(c)
		}
	}
}

// OptionalJWTAuthMiddleware прикрепляет identity, если токен валиден. Гости проходят без нее.
func OptionalJWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := userIDFromRequest(c, secret)
			if err == nil {
				c.SetRequest(
					c.Request().WithContext(
						appctx.WithUserID(c.Request().Context(), userID),
					),
				)
			}

			return next(c)
		}
	}
}

// userIDFromRequest ищет токен в cookie jwt, query token и заголовке Authorization.
func userIDFromRequest(c echo.Context, secret string) (uuid.UUID, error) {
	raw := ""

	if cookie, err := c.Cookie("jwt"); err == nil {
		raw = cookie.Value
	}

	if raw == "" {
		raw = c.QueryParam("token")
	}

	if raw == "" {
		raw, _ = strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	}

	if raw == "" {
		return uuid.Nil, errMissingToken
	}

	token, err := jwt.ParseWithClaims(
		raw,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	return uuid.Parse(claims.Subject)
}
