package middleware

import (
	"strings"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderRequestID é o header HTTP para request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID é o header HTTP para trace ID
	HeaderTraceID = "X-Trace-ID"

	// headerEstimateID é preenchido pelo handler quando um orçamento é gerado
	headerEstimateID = "X-Estimate-ID"

	maxRequestIDLen = 64
	maxTraceIDLen   = 128
)

// RequestID adiciona request_id e trace_id a cada requisição e registra o
// acesso. Sondas de health ficam em debug para não poluir o log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := incomingID(c.GetHeader(HeaderRequestID), maxRequestIDLen, shortID)
		traceID := incomingID(c.GetHeader(HeaderTraceID), maxTraceIDLen, uuid.NewString)

		ctx := logger.WithTraceID(logger.WithRequestID(c.Request.Context(), requestID), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		log := logger.Get(ctx)
		probe := isProbe(c.Request.URL.Path)

		entry := log.Info()
		if probe {
			entry = log.Debug()
		}
		entry.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int64("content_length", c.Request.ContentLength).
			Msg("Requisição recebida")

		c.Next()

		status := c.Writer.Status()
		done := accessEvent(log, status, probe).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("latency", time.Since(start))
		if id := c.Writer.Header().Get(headerEstimateID); id != "" {
			done = done.Str("estimate_id", id)
		}
		done.Msg("Requisição concluída")
	}
}

// incomingID keeps a client supplied id when it is sane, otherwise generates one.
func incomingID(raw string, maxLen int, generate func() string) string {
	id := SanitizeHeaderValue(raw)
	if id == "" || len(id) > maxLen {
		return generate()
	}
	return id
}

func shortID() string {
	return uuid.NewString()[:8]
}

func isProbe(path string) bool {
	return strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/metrics")
}

func accessEvent(log *zerolog.Logger, status int, probe bool) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	case probe:
		return log.Debug()
	}
	return log.Info()
}
