package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

// TokenBlacklist revoked access token ids
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates "Authorization: Bearer <access token>" and stores the
// caller in the context. With a nil blacklist, or when the lookup fails,
// revocation is not checked.
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "missing Authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeUnauthenticated, "Authorization header must be Bearer <token>")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthenticated, "token is invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TypeAccess {
			response.Unauthorized(c, response.CodeUnauthenticated, "access token required")
			c.Abort()
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, response.CodeUnauthenticated, "token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth lets the request through when the caller holds one of the roles
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "insufficient permissions")
		c.Abort()
	}
}
