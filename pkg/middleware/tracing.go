package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/davydenkov/user-manage/pkg/logging"
	"github.com/davydenkov/user-manage/pkg/metrics"
)

// RequestIDHeader is the inbound header a client may use to supply its own
// correlation ID.
const RequestIDHeader = "X-Request-Id"

// TraceIDHeader is echoed on every response with the request's trace ID.
const TraceIDHeader = "X-Trace-Id"

// maxTraceIDLength caps client-supplied IDs so hostile headers cannot flood
// the logs. Longer or non-printable values are replaced with a fresh UUID.
const maxTraceIDLength = 128

// Tracing assigns or propagates a correlation ID, attaches it to the request
// context, echoes it in the response headers and emits structured start and
// completion logs with a coarse performance bucket.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(RequestIDHeader)
		if !validTraceID(traceID) {
			traceID = uuid.New().String()
		}

		// Rebind on the request's own context so concurrent requests never
		// see each other's trace IDs.
		ctx := logging.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceIDHeader, traceID)

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		method := c.Request.Method

		logger := log.With().Str("trace_id", traceID).Logger()
		logger.Info().
			Str("method", method).
			Str("path", path).
			Msg("request started")

		start := time.Now()

		defer func() {
			elapsed := time.Since(start)
			if r := recover(); r != nil {
				logger.Error().
					Str("method", method).
					Str("path", path).
					Dur("elapsed", elapsed).
					Interface("error", r).
					Msg("request failed")
				panic(r)
			}

			status := c.Writer.Status()
			logger.Info().
				Str("method", method).
				Str("path", path).
				Int("status", status).
				Dur("elapsed", elapsed).
				Str("performance", performanceBucket(elapsed)).
				Msg("request completed")
			metrics.RecordRequest(method, c.FullPath(), status, elapsed)
		}()

		c.Next()
	}
}

func performanceBucket(elapsed time.Duration) string {
	switch {
	case elapsed < 100*time.Millisecond:
		return "fast"
	case elapsed < time.Second:
		return "normal"
	default:
		return "slow"
	}
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
