package middleware

import (
	"net/http"

	apperrors "vidhub/pkg/errors"
	"vidhub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader echoes the server span's trace id so a client report can be
// matched to a trace.
const TraceIDHeader = "X-Trace-ID"

// resourceParams maps route parameters onto the span keys the services use,
// so HTTP and service spans for the same video or comment line up.
var resourceParams = map[string]attribute.Key{
	"videoId":   tracing.VideoIDKey,
	"commentId": tracing.CommentIDKey,
	"targetId":  attribute.Key("subscription.target_id"),
	"userId":    attribute.Key("profile.user_id"),
}

// TracingMiddleware opens a server span per request, continuing any trace
// context the caller propagated.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracing.TraceHTTPRequest(parent, c.Request.Method, route)
		defer span.End()

		attrs := []attribute.KeyValue{
			attribute.String("http.request_id", c.GetString(ContextRequestIDKey)),
			attribute.String("http.client_ip", c.ClientIP()),
		}
		for _, p := range c.Params {
			if key, ok := resourceParams[p.Key]; ok {
				attrs = append(attrs, key.String(p.Value))
			}
		}
		span.SetAttributes(attrs...)

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if caller, ok := CurrentUserID(c); ok {
			span.SetAttributes(tracing.UserIDKey.String(string(caller)))
		}
		annotateOutcome(span, c)
	}
}

// annotateOutcome marks only server failures as span errors. Client errors
// keep an unset status but carry their error code.
func annotateOutcome(span trace.Span, c *gin.Context) {
	status := c.Writer.Status()
	span.SetAttributes(attribute.Int("http.status_code", status))

	last := c.Errors.Last()
	if last != nil {
		if appErr := apperrors.GetAppError(last.Err); appErr != nil {
			span.SetAttributes(attribute.String("error.code", string(appErr.Code)))
		}
	}

	switch {
	case status >= http.StatusInternalServerError:
		msg := http.StatusText(status)
		if last != nil {
			span.RecordError(last.Err)
			msg = last.Err.Error()
		}
		span.SetStatus(codes.Error, msg)
	case status < http.StatusBadRequest:
		span.SetStatus(codes.Ok, "")
	}
}
