// Package handler exposes the ledger over HTTP with gin.
//
// Callers identify themselves with the X-Principal header, which is expected
// to be set by an authenticating proxy in front of the ledger. Domain failures
// are returned with their numeric code: {"error": ..., "code": n, "kind": ...}.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/errcode"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"go.uber.org/zap"
)

// PrincipalHeader carries the authenticated caller.
const PrincipalHeader = "X-Principal"

// statusFor maps a coded error kind to an HTTP status.
func statusFor(kind string) int {
	switch kind {
	case errcode.KindNotAuthorized, errcode.KindNotVerifiedGrader, errcode.KindNotOwner:
		return http.StatusForbidden
	case errcode.KindExists, errcode.KindAlreadyGraded, errcode.KindAlreadyRegistered:
		return http.StatusConflict
	case errcode.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err. Coded errors go out verbatim; anything else is
// logged and reported as an internal error.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var ce *errcode.Error
	if errors.As(err, &ce) {
		c.JSON(statusFor(ce.Kind), ce)
		return
	}
	if errors.Is(err, principal.ErrInvalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Error(op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// caller returns the request principal, writing 401 when it is missing.
func caller(c *gin.Context) (principal.Principal, bool) {
	p, ok := principal.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + PrincipalHeader + " header"})
		return "", false
	}
	return p, true
}

// uintParam parses a non-negative integer path parameter, writing 400 on failure.
func uintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative integer"})
		return 0, false
	}
	return v, true
}

// bindJSON decodes the request body into dst, writing 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
