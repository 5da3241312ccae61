package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/auth"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxRoleKey      = "userRole"
	CtxSessionIDKey = "sessionID"
	CtxCheckerKey   = "permissionChecker"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context. The checker is rebuilt
		// per request from the token claims so no user lookup is needed.
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)
		if claims.SessionID != "" {
			c.Set(CtxSessionIDKey, claims.SessionID)
		}
		c.Set(CtxCheckerKey, permissions.NewChecker(permissions.Role(claims.Role), claims.UserID))

		c.Next()
	}
}

// CheckerFromContext returns the permission checker stored by Auth, or false
// when the request was not authenticated.
func CheckerFromContext(c *gin.Context) (*permissions.Checker, bool) {
	v, ok := c.Get(CtxCheckerKey)
	if !ok {
		return nil, false
	}
	checker, ok := v.(*permissions.Checker)
	return checker, ok && checker != nil
}
