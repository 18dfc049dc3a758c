package utils

import (
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

// ExtractActor pulls the acting identity out of the request's JWT claims
// for status-history attribution. Requests without a token are attributed
// to "anonymous"; transitions applied by the engine itself use "system".
func ExtractActor(c echo.Context) string {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok || user == nil || !user.Valid {
		return "anonymous"
	}

	claims, ok := user.Claims.(jwt.MapClaims)
	if !ok {
		return "anonymous"
	}

	if name, ok := claims["name"].(string); ok && name != "" {
		return name
	}

	return "anonymous"
}
