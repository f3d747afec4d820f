package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/sqlerr"
	"github.com/rs/zerolog"
)

const (
	// RequestIDHeader carries the request correlation id in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// requestIDMiddleware reuses the caller's X-Request-ID or generates one, and
// stores a request scoped logger in the request context
func requestIDMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		reqLog := log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()
	}
}

// requestID returns the id set by requestIDMiddleware
func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// loggingMiddleware logs one line per request, level by status
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("request_id", requestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// recoveryMiddleware turns panics into the generic 500 body
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", requestID(c)).
					Interface("error", err).
					Bytes("stack", debug.Stack()).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, errs.NewInternalServerError())
			}
		}()
		c.Next()
	}
}

// corsMiddleware allows the configured origins with credentials
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", strings.Join([]string{totalPagesHeader, RequestIDHeader, "Retry-After"}, ", "))
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// timeoutMiddleware bounds the handler's store and cache calls
func timeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// errorMiddleware renders the last error attached with c.Error. Only code,
// message, status and field errors reach the client; causes of 500s are logged.
func errorMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		httpErr := sqlerr.HandleError(err)

		if httpErr.Status >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", requestID(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("Request failed")
		} else {
			log.Debug().
				Err(err).
				Str("request_id", requestID(c)).
				Int("status", httpErr.Status).
				Msg("Request rejected")
		}

		c.JSON(httpErr.Status, httpErr)
	}
}

// abortWithError attaches err for errorMiddleware and stops the chain
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
