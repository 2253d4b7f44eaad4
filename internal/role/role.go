package role

import (
	"fmt"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	pageDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/page"
	roleDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/role"
)

type Role = roleDatamodel.Role

type PagePermission = roleDatamodel.PagePermission

// NewPageList returns one entry per page with every capability off, in
// page order.
func NewPageList(pages []pageDatamodel.Page) []PagePermission {
	list := make([]PagePermission, 0, len(pages))
	for _, p := range pages {
		list = append(list, PagePermission{PageID: p.ID, PageName: p.Name})
	}
	return list
}

// Grant switches actions on for the entry whose page name matches,
// case-insensitively. It reports whether an entry matched.
func Grant(list []PagePermission, pageName string, actions ...string) (bool, error) {
	for i := range list {
		if !strings.EqualFold(list[i].PageName, pageName) {
			continue
		}
		for _, a := range actions {
			switch strings.ToLower(a) {
			case "me":
				list[i].Me = true
			case "view":
				list[i].View = true
			case "insert":
				list[i].Insert = true
			case "update":
				list[i].Update = true
			case "delete":
				list[i].Delete = true
			default:
				return true, errors.NewValidationFieldError("action", fmt.Sprintf("unknown action %q", a), errors.ErrCodeValidationFailed)
			}
		}
		return true, nil
	}
	return false, nil
}

// Validate requires a name and at most one entry per page id.
func Validate(r Role) error {
	validator := validation.NewValidator()
	validator.Field("name", r.Name).Required(errors.ErrCodeValidationFailed)
	validator.Field("pageList", r.PageList).Custom(func(value interface{}) *errors.AppError {
		seen := make(map[string]bool)
		for _, p := range value.([]PagePermission) {
			if p.PageID == "" {
				return errors.NewValidationFieldError("pageList", "every permission needs a pageId", errors.ErrCodeValidationFailed)
			}
			if seen[p.PageID] {
				return errors.NewValidationFieldError("pageList", fmt.Sprintf("page %s is listed twice", p.PageID), errors.ErrCodeValidationFailed)
			}
			seen[p.PageID] = true
		}
		return nil
	})
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
