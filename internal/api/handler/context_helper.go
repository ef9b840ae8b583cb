package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

// Context keys written by middleware.JWTAuth
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUserID extracts the authenticated account id. On failure it writes a
// 401 and returns false; the caller should return immediately.
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return 0, false
	}
	return id, true
}

// MustGetRole extracts the authenticated role.
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxRole)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return "", false
	}
	return s, true
}

// tokenIdentity jti and expiry of the access token, empty when absent
func tokenIdentity(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// parseIDParam reads a positive integer path parameter, writing a 400 when it
// is malformed.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, response.CodeInvalidParams, "invalid "+name)
		return 0, false
	}
	return id, true
}
