// Package middleware provides the gin middleware chain of the admin
// server: request id propagation, request logging, panic recovery, and
// subject resolution.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the request id.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the gin context key holding the request id.
const ContextRequestID = "request_id"

// RequestID propagates the inbound request id, generating one when the
// client sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the request id attached to the context.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
