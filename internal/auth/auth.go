package auth

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// UserID extracts the authenticated user from the HS256 access-token cookie.
func UserID(c echo.Context, secret []byte) (string, error) {
	cookie, err := c.Cookie("accessToken")
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
	}
	tokenString := cookie.Value
	if tokenString == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
	}
	if !token.Valid {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
	}

	return sub, nil
}

// Token returns the raw access-token cookie value, used to forward the
// session credential to the upstream API.
func Token(c echo.Context) string {
	cookie, err := c.Cookie("accessToken")
	if err != nil {
		return ""
	}
	return cookie.Value
}
