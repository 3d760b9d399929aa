package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tasktrack-api/domain"
)

const actorContextKey = "actor"

// RequireAuth rejects requests lacking a valid bearer token and resolves the
// token subject to a full user record for handlers downstream. A missing
// header is 401; an unverifiable token or unknown subject is 403.
func RequireAuth(svc Service, auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: errMissingAuthorization.Error()})
			}
			sub, err := auth.UserIDFromAuthHeader(header)
			if err != nil {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "invalid token"})
			}
			actor, err := svc.ActorByID(c.Request().Context(), sub)
			if err != nil {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "invalid token"})
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func actorFromContext(c echo.Context) domain.User {
	actor, _ := c.Get(actorContextKey).(domain.User)
	return actor
}
