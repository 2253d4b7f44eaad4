package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionForbiddenEvent   = "session.forbidden"
	SessionEstablishedEvent = "session.established"
	SessionEndedEvent       = "session.ended"
	SessionStaleEvent       = "session.stale"
)

// SessionForbidden is emitted by the transport when the backend answers 403.
// Subscribers must tear the session down.
type SessionForbidden struct {
	BaseEvent
	Method string `json:"method"`
	Path   string `json:"path"`
}

func NewSessionForbidden(method, path, message string) SessionForbidden {
	return SessionForbidden{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      SessionForbiddenEvent,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"method":  method,
				"path":    path,
				"message": message,
			},
		},
		Method: method,
		Path:   path,
	}
}

type SessionEstablished struct {
	BaseEvent
	UserName   string `json:"user_name"`
	SuperAdmin bool   `json:"super_admin"`
}

func NewSessionEstablished(userName string, superAdmin bool) SessionEstablished {
	return SessionEstablished{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      SessionEstablishedEvent,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_name":   userName,
				"super_admin": superAdmin,
			},
		},
		UserName:   userName,
		SuperAdmin: superAdmin,
	}
}

// SessionEnded covers both explicit and forced logout.
type SessionEnded struct {
	BaseEvent
	Forced bool `json:"forced"`
}

func NewSessionEnded(forced bool) SessionEnded {
	return SessionEnded{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      SessionEndedEvent,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"forced": forced},
		},
		Forced: forced,
	}
}

// SessionStale reports a failed background revalidation. The cached
// session stays in place.
type SessionStale struct {
	BaseEvent
	Reason string `json:"reason"`
}

func NewSessionStale(reason string) SessionStale {
	return SessionStale{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      SessionStaleEvent,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"reason": reason},
		},
		Reason: reason,
	}
}
