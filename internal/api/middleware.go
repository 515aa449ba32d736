package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/last-emo-boy/uptime-core/internal/apperr"
	"github.com/last-emo-boy/uptime-core/internal/auth"
)

const sessionCookieName = "uptime_session"

// authContextKey is the gin.Context key an authenticated username is stored
// under once sessionMiddleware has validated the request's cookie.
const authContextKey = "username"

// sessionMiddleware reads the session cookie, if any, and sets authContextKey
// when it validates. It never aborts: routes decide for themselves whether
// authentication is required, since reads are always permitted and only
// writes are gated.
func sessionMiddleware(authSvc *auth.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessionCookieName)
		if err == nil && cookie != "" {
			if claims, err := authSvc.Validate(cookie); err == nil {
				c.Set(authContextKey, claims.Username)
			}
		}
		c.Next()
	}
}

// isAuthenticated reports whether sessionMiddleware validated this request.
func isAuthenticated(c *gin.Context) bool {
	_, ok := c.Get(authContextKey)
	return ok
}

// requireAuth aborts with 401 unless auth is disabled or the request
// carried a valid session.
func requireAuth(authEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authEnabled || isAuthenticated(c) {
			c.Next()
			return
		}
		respondError(c, apperr.Auth("Authentication required"))
		c.Abort()
	}
}

// corsMiddleware allows the dashboard UI to call the API from another
// origin, restricted to the methods this API actually exposes.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// loggingMiddleware writes one access-log line per request.
func loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
		)
	})
}

// recoveryMiddleware converts a handler panic into a 500; a panic in one
// handler must never take down the whole server.
func recoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
