package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/go-resty/resty/v2"
)

// sensitiveFields are field names that should be filtered from logs
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"key",
	"session",
	"credential",
	"auth",
}

// LogRequest is a resty OnBeforeRequest hook. It runs before the URL is
// resolved against the base URL, so path is logged as the caller wrote it.
func LogRequest(lg *slog.Logger) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		l := loggerFor(lg, r)
		l.Debug("outgoing request",
			"method", r.Method,
			"path", r.URL,
			"query", r.QueryParam.Encode(),
			"headers", filterSensitiveHeaders(r.Header),
			"body", describeBody(r.Body),
		)
		return nil
	}
}

// LogResponse is a resty OnAfterResponse hook.
func LogResponse(lg *slog.Logger) resty.ResponseMiddleware {
	return func(_ *resty.Client, resp *resty.Response) error {
		statusCode := resp.StatusCode()

		logLevel := slog.LevelDebug
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		l := loggerFor(lg, resp.Request)
		l.Log(resp.Request.Context(), logLevel, "response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status_code", statusCode,
			"duration_ms", resp.Time().Milliseconds(),
			"response_size", len(resp.Body()),
			"body", filterSensitiveBody(resp.Body()),
		)
		return nil
	}
}

func loggerFor(lg *slog.Logger, r *resty.Request) *slog.Logger {
	if r == nil {
		return lg
	}
	if traceID := internal.TraceIDFromContext(r.Context()); traceID != "" {
		return lg.With("traceID", traceID)
	}
	return lg
}

func describeBody(body interface{}) string {
	switch b := body.(type) {
	case nil:
		return ""
	case []byte:
		return filterSensitiveBody(b)
	case string:
		return filterSensitiveBody([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return "[UNPRINTABLE]"
		}
		return filterSensitiveBody(raw)
	}
}

// filterSensitiveHeaders masks headers such as x-SessionKey
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string)

	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}

	return filtered
}

// filterSensitiveBody removes or masks sensitive fields from JSON body
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var jsonData interface{}
	if err := json.Unmarshal(body, &jsonData); err != nil {
		bodyStr := string(body)
		for _, sensitiveField := range sensitiveFields {
			if strings.Contains(strings.ToLower(bodyStr), sensitiveField) {
				return "[FILTERED - Contains sensitive data]"
			}
		}
		return bodyStr
	}

	filtered := filterSensitiveJSON(jsonData)

	filteredBytes, err := json.Marshal(filtered)
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}

	return string(filteredBytes)
}

// filterSensitiveJSON recursively filters sensitive fields from JSON data.
// Double-encoded payloads (a JSON document inside a string) are filtered too.
func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{})
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
			} else {
				filtered[key] = filterSensitiveJSON(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			var inner interface{}
			if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
				raw, err := json.Marshal(filterSensitiveJSON(inner))
				if err == nil {
					return string(raw)
				}
			}
		}
		return v
	default:
		return v
	}
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, sensitiveField := range sensitiveFields {
		if strings.Contains(lower, sensitiveField) {
			return true
		}
	}
	return false
}

// RestyLogger routes resty's own diagnostics through slog.
type RestyLogger struct {
	Logger *slog.Logger
}

func (l RestyLogger) Errorf(format string, v ...interface{}) {
	l.Logger.Error("resty", "detail", sprintf(format, v...))
}

func (l RestyLogger) Warnf(format string, v ...interface{}) {
	l.Logger.Warn("resty", "detail", sprintf(format, v...))
}

func (l RestyLogger) Debugf(format string, v ...interface{}) {
	l.Logger.Debug("resty", "detail", sprintf(format, v...))
}

func sprintf(format string, v ...interface{}) string {
	return fmt.Sprintf(format, v...)
}
