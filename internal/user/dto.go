package user

import (
	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/user"
)

type CreateUserDTO struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   string `json:"roleId"`
	Detail   string `json:"detail"`
}

func (d CreateUserDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required(errors.ErrCodeValidationFailed)
	validator.Field("password", d.Password).Required(errors.ErrCodeValidationFailed)
	validator.Field("roleId", d.RoleID).Required(errors.ErrCodeValidationFailed)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

func (d CreateUserDTO) toDataModel() userDatamodel.CreateUser {
	return userDatamodel.CreateUser{
		Name:     d.Name,
		Password: d.Password,
		RoleID:   d.RoleID,
		Detail:   d.Detail,
	}
}

type UpdateUserDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	RoleID string `json:"roleId"`
	Detail string `json:"detail"`
}

func (d UpdateUserDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("id", d.ID).Required(errors.ErrCodeValidationFailed)
	validator.Field("name", d.Name).Required(errors.ErrCodeValidationFailed)
	validator.Field("roleId", d.RoleID).Required(errors.ErrCodeValidationFailed)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// ImportReport counts the outcome of an Excel import.
type ImportReport struct {
	Created int        `json:"created"`
	Skipped int        `json:"skipped"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors,omitempty"`
}

type RowError struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Message string `json:"message"`
}
