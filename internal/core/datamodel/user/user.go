package user

// User is the document served by the bespoke User endpoint. Name is the
// login identifier, usually a tax number; Detail is the display name.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Detail   string `json:"detail"`
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName,omitempty"`
}

type CreateUser struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   string `json:"roleId"`
	Detail   string `json:"detail"`
}

type UpdateUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RoleID   string `json:"roleId"`
	Detail   string `json:"detail"`
	Password string `json:"password,omitempty"`
}
