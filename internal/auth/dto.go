package auth

import (
	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
)

// LoginDTO carries the credentials posted to Login. Name is usually a tax
// number.
type LoginDTO struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required(errors.ErrCodeValidationFailed)
	validator.Field("password", d.Password).Required(errors.ErrCodeValidationFailed)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// ChangePasswordDTO is the self-service password change. Confirm must
// repeat Password.
type ChangePasswordDTO struct {
	Password string `json:"password"`
	Confirm  string `json:"-"`
}

func (d ChangePasswordDTO) Validate() error {
	if err := validation.ValidatePasswordStrength(d.Password); err != nil {
		return err
	}
	if d.Password != d.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}
