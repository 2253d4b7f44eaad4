package permission

import (
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/star-supla/internal"
	roleDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/role"
)

// Page names the dashboard gates on.
const (
	PageUsers = "Mükellefler"
	PagePages = "Sayfalar"
	PageRoles = "Roller"
)

type Action string

const (
	ActionView   Action = "view"
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionView, ActionInsert, ActionUpdate, ActionDelete:
		return a, nil
	}
	return "", internal.NewValidationFieldError("action", fmt.Sprintf("unknown action %q", s), internal.ErrCodeValidationFailed)
}

type Capabilities struct {
	CanView   bool `json:"canView"`
	CanInsert bool `json:"canInsert"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
}

var (
	none = Capabilities{}
	all  = Capabilities{CanView: true, CanInsert: true, CanUpdate: true, CanDelete: true}
)

func (c Capabilities) Allows(a Action) bool {
	switch a {
	case ActionView:
		return c.CanView
	case ActionInsert:
		return c.CanInsert
	case ActionUpdate:
		return c.CanUpdate
	case ActionDelete:
		return c.CanDelete
	}
	return false
}

// PermissionSet is either SuperAdmin or Scoped. A nil set means nothing is
// cached and grants nothing.
type PermissionSet interface {
	isPermissionSet()
}

// SuperAdmin bypasses every page lookup.
type SuperAdmin struct{}

func (SuperAdmin) isPermissionSet() {}

// Scoped grants what its page list says, first matching page name wins.
type Scoped struct {
	Pages []roleDatamodel.PagePermission
}

func (Scoped) isPermissionSet() {}

// Decode reads the cached Me/Role document. The superadmin flag rides on
// the same object as the page list.
func Decode(raw json.RawMessage) (PermissionSet, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var doc struct {
		IsSuperAdmin bool                           `json:"isSuperAdmin"`
		PageList     []roleDatamodel.PagePermission `json:"pageList"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, internal.NewParseError("cached permission set is not valid", err)
	}

	if doc.IsSuperAdmin {
		return SuperAdmin{}, nil
	}
	return Scoped{Pages: doc.PageList}, nil
}

func project(p roleDatamodel.PagePermission) Capabilities {
	return Capabilities{
		CanView:   p.View,
		CanInsert: p.Insert,
		CanUpdate: p.Update,
		CanDelete: p.Delete,
	}
}
