package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"colistrack/internal/auth"
)

// CurrentClaims extracts the typed JWT claims the auth middleware parsed for
// this request.
func CurrentClaims(c echo.Context) (*auth.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// currentUserID parses the caller's account ID out of the claims.
func currentUserID(c echo.Context) (uuid.UUID, *auth.Claims, error) {
	claims, err := CurrentClaims(c)
	if err != nil {
		return uuid.Nil, nil, err
	}
	id, parseErr := uuid.Parse(claims.UserID)
	if parseErr != nil {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	return id, claims, nil
}
