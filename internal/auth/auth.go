package auth

import (
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/star-supla/internal"
)

// State is where the session manager sits in the login lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CurrentUser is the Me document. The backend may add fields; Raw keeps
// the document as served.
type CurrentUser struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Detail string          `json:"detail"`
	RoleID string          `json:"roleId"`
	Raw    json.RawMessage `json:"-"`
}

// DecodeCurrentUser reads a Me document.
func DecodeCurrentUser(raw json.RawMessage) (*CurrentUser, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var user CurrentUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, internal.NewParseError("current user document is not valid", err)
	}
	user.Raw = append(json.RawMessage(nil), raw...)
	return &user, nil
}

var ErrPasswordMismatch = internal.NewValidationFieldError("confirm", "passwords do not match", internal.ErrCodeValidationFailed)
