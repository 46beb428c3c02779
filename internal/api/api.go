// Package api implements the HTTP handlers of the records API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

// DefaultTimeout bounds every store call when Handler.Timeout is unset.
const DefaultTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/celerix-dev/celerix-records/internal/api")

// errValidation marks request problems that map to 400.
var errValidation = errors.New("invalid request")

type Handler struct {
	Store sdk.DocumentStore
	// Timeout bounds each request's store calls.
	Timeout time.Duration
	// StrictCreate makes create endpoints answer 201 with the created record
	// instead of 200 with the whole collection.
	StrictCreate bool
	// Now stamps clock_in and insert_date. Defaults to time.Now.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// begin derives the request context with its deadline and opens a span.
func (h *Handler) begin(c *gin.Context, name string) (context.Context, trace.Span, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	ctx, span := tracer.Start(ctx, name)
	return ctx, span, func() {
		span.End()
		cancel()
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidID), errors.Is(err, errValidation):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, span trace.Span, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, span trace.Span) (uuid.UUID, error) {
	id, err := engine.ParseID(c.Param("id"))
	if err != nil {
		return uuid.Nil, err
	}
	span.SetAttributes(attribute.String("record.id", id.String()))
	return id, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errValidation, err)
	}
	return nil
}
