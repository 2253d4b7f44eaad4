package middleware

import (
	"net/http"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// TraceRequest tags every outgoing call with a trace id, reusing one already
// carried by the context.
func TraceRequest(_ *resty.Client, r *resty.Request) error {
	ctx := r.Context()
	traceID := internal.TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = internal.ContextWithTraceID(ctx, traceID)
	}

	r.SetContext(logger.With(ctx, "traceID", traceID))
	r.SetHeader(TraceHeader, traceID)
	return nil
}

// RequestID is the server side counterpart used by the in-process backend.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)
		ctx = internal.ContextWithTraceID(ctx, traceID)

		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
