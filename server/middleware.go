package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatewall/gatewall-go/inspect"
)

// validationMiddleware reads the raw request body, runs the validator, and
// aborts rejected requests before any route handler executes.
//
// The body is restored afterwards so downstream handlers can read it
// normally. Each request is tagged with a UUID, stored in the gin context
// under "request_id" and echoed in the X-Request-ID response header, so
// events and audit records can be correlated with client reports.
func (s *Server) validationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		reader := io.Reader(c.Request.Body)
		if s.maxBodyBytes > 0 {
			// Read one byte past the cap to distinguish "exactly at
			// the cap" from "over it".
			reader = io.LimitReader(reader, s.maxBodyBytes+1)
		}

		body, err := io.ReadAll(reader)
		if err != nil {
			// Transport failure, not a validation decision.
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if s.maxBodyBytes > 0 && int64(len(body)) > s.maxBodyBytes {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		// Restore the body for downstream handlers.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		req := inspect.Request{
			ID:     requestID,
			Path:   c.Request.URL.Path,
			Remote: c.ClientIP(),
		}
		decision := s.validator.InspectRequest(c.Request.Context(), req, body)
		if !decision.Accepted() {
			c.AbortWithStatus(statusForDecision(decision))
			return
		}

		c.Next()
	}
}

// statusForDecision maps a rejection to its HTTP status.
//
// Every rejection maps to an opaque 500 with no structured body. That
// mirrors the original middleware, which surfaced validation failure as an
// unhandled fault rather than a deliberate client error. A 4xx (e.g. 400 or
// 422) would be the correct signal; keep 500 only while bit-for-bit
// response compatibility matters.
func statusForDecision(_ inspect.Decision) int {
	return http.StatusInternalServerError
}
