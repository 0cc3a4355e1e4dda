// Package api provides HTTP handlers and middleware.
package api

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/PeakReachMedia/peakreach-go/utils"
	"github.com/gin-gonic/gin"
)

// SessionIDHeader carries the session identifier on API calls.
const SessionIDHeader = "x-session-id"

// isClientDisconnectError checks if the error is a common network error
// that occurs when a client closes the connection prematurely. These errors
// are safe to ignore in logs as they are not application-level bugs.
func isClientDisconnectError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.EPIPE) || errors.Is(opErr.Err, syscall.ECONNRESET) {
			return true
		}
	}

	// Fallback for other error wrappers, like from within Gin itself.
	return strings.Contains(strings.ToLower(err.Error()), "broken pipe")
}

// FilteredLogger creates a Gin logger middleware that mimics gin.Default()
// but filters out benign "broken pipe" errors to reduce log noise.
func FilteredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		lastError := c.Errors.Last()
		if lastError != nil && isClientDisconnectError(lastError.Err) {
			return
		}

		var errorMsg string
		if lastError != nil {
			errorMsg = lastError.Error()
		}

		log.Printf("[GIN] %v | %3d | %13v | %15s | %-7s %#v %s",
			time.Now().Format("2006/01/02 - 15:04:05"),
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			path,
			errorMsg,
		)
	}
}

// RequireOperator guards operator-only endpoints with a bearer JWT issued by
// the login handler.
func RequireOperator(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(authHeader[7:], jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if tokenType, _ := claims["type"].(string); tokenType != "operator_auth" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
