package validation

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/star-supla/internal"
	reservationDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/reservation"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), code)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinInt(min int, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int); ok && v < min {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be at least %d", fv.FieldName, min), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxInt(max int, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int); ok && v > max {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must not exceed %d", fv.FieldName, max), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len([]rune(v)) < min {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len([]rune(v)) > max {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// DateLayout checks that a string parses with layout.
func (fv *FieldValidator) DateLayout(layout string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if _, err := time.Parse(layout, v); err != nil {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a date in %s format", fv.FieldName, layout), errors.ErrCodeInvalidDate)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			err := validator(field.Value)
			if err == nil {
				continue
			}

			if details, ok := err.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: err.Message,
				Code:    string(err.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// ValidateQuantity accepts q iff 1 <= q <= available, where available is
// stock minus what other reservations already hold on the same day.
func ValidateQuantity(quantity, available int) *errors.AppError {
	validator := NewValidator()
	validator.Field("quantity", quantity).
		MinInt(1, errors.ErrCodeInvalidQuantity).
		Custom(func(value interface{}) *errors.AppError {
			if q := value.(int); q >= 1 && q > available {
				return errors.NewValidationFieldError("quantity",
					fmt.Sprintf("only %d units are available, %d requested", max(available, 0), q),
					errors.ErrCodeInsufficientStock)
			}
			return nil
		})
	return validator.Validate()
}

func ValidateReservation(r reservationDatamodel.Reservation) *errors.AppError {
	validator := NewValidator()
	validator.Field("date", r.Date).
		Required(errors.ErrCodeInvalidDate).
		DateLayout(reservationDatamodel.DateLayout)
	validator.Field("userId", r.UserID).Required(errors.ErrCodeValidationFailed)
	validator.Field("productId", r.ProductID).Required(errors.ErrCodeValidationFailed)
	validator.Field("quantity", r.Quantity).MinInt(1, errors.ErrCodeInvalidQuantity)
	return validator.Validate()
}

func ValidateProduct(name, imageURL string, stock int) *errors.AppError {
	validator := NewValidator()
	validator.Field("name", name).Required(errors.ErrCodeValidationFailed)
	validator.Field("imageUrl", imageURL).Required(errors.ErrCodeMissingImage)
	validator.Field("stock", stock).MinInt(0, errors.ErrCodeInvalidStock)
	return validator.Validate()
}

// PasswordScore counts the satisfied strength rules: at least 8
// characters, an upper case letter, a digit, a symbol.
func PasswordScore(password string) int {
	score := 0
	if len(password) >= 8 {
		score++
	}

	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			symbol = true
		}
	}
	for _, ok := range []bool{upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

func ValidatePasswordStrength(password string) *errors.AppError {
	validator := NewValidator()
	validator.Field("password", password).
		Required(errors.ErrCodeWeakPassword).
		MinLength(8, errors.ErrCodeWeakPassword).
		Custom(func(value interface{}) *errors.AppError {
			if PasswordScore(value.(string)) < 3 {
				return errors.NewValidationFieldError("password",
					"password needs at least three of: 8 characters, an upper case letter, a digit, a symbol",
					errors.ErrCodeWeakPassword)
			}
			return nil
		})
	return validator.Validate()
}
