package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cyrene-ai/cyrene-server/internal/domain/user"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/auth"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

const currentUserKey = "current_user"

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware verifies the bearer token and loads the account behind it.
// Accounts that were deleted or banned after the token was issued are
// rejected.
func AuthMiddleware(issuer *auth.TokenIssuer, users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			platformerrors.WriteUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := issuer.Verify(c.Request.Context(), token)
		if err != nil {
			platformerrors.WriteUnauthorized(c, "invalid token")
			return
		}
		usr, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || usr == nil {
			platformerrors.WriteUnauthorized(c, "unknown user")
			return
		}
		if usr.IsDeleted {
			platformerrors.WriteUnauthorized(c, "unknown user")
			return
		}
		if usr.IsBanned {
			platformerrors.WriteForbidden(c, "account is banned")
			return
		}
		c.Set(currentUserKey, usr)
		c.Next()
	}
}

// AdminRequired rejects requests whose authenticated user is not an admin.
// It must run after AuthMiddleware.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := CurrentUser(c)
		if !ok {
			platformerrors.WriteUnauthorized(c, "authentication required")
			return
		}
		if !usr.IsAdmin {
			platformerrors.WriteForbidden(c, "admin privileges required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*user.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	usr, ok := val.(*user.User)
	return usr, ok
}
