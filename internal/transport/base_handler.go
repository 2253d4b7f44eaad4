package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/star-supla/pkg/logger"
)

// BaseHandler writes responses in the backend's envelope shape. Only the
// in-process backend used by tests serves HTTP.
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteResult wraps result in {"result": ...}.
func (h *BaseHandler) WriteResult(w http.ResponseWriter, result interface{}) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

// WriteError writes a {"message": ...} envelope. An empty message yields {}
// so clients fall back to their default text.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Debug("http error", "status", status, "message", message)

	errorResp := map[string]interface{}{}
	if message != "" {
		errorResp["message"] = message
	}
	h.WriteJSON(w, status, errorResp)
}
