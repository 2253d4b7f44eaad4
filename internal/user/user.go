package user

import (
	"strings"

	userDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/user"
)

// User is a taxpayer account. Name is the login identifier, usually a tax
// number; Detail is the company title shown in lists.
type User = userDatamodel.User

// FindByName matches the login identifier exactly, ignoring surrounding
// spaces.
func FindByName(users []User, name string) *User {
	name = strings.TrimSpace(name)
	for i := range users {
		if strings.TrimSpace(users[i].Name) == name {
			return &users[i]
		}
	}
	return nil
}

func FindByID(users []User, id string) *User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

// Search keeps users whose name or detail contains term, case-insensitively.
func Search(users []User, term string) []User {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users
	}

	var out []User
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Detail), term) {
			out = append(out, u)
		}
	}
	return out
}
