package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core/user"
)

const (
	ctxUserKey   = "user"
	ctxClaimsKey = "claims"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// authMiddleware verifies the bearer access token and resolves the live user
// record, so deactivation takes effect on the very next request.
func authMiddleware(tokens *user.TokenService, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return errTokenRequired
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				return errInvalidToken
			}
			usr, err := svc.GetByID(ctx.Request().Context(), claims.UserID)
			if err != nil || !usr.IsActive {
				return errInactiveUser
			}

			ctx.Set(ctxUserKey, usr)
			ctx.Set(ctxClaimsKey, claims)
			return next(ctx)
		}
	}
}

// roleMiddleware gates a route group to the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errTokenRequired
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return errForbidden
		}
	}
}

func supervisorMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleSupervisor, user.RoleAdmin)
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleAdmin)
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(ctxUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}
