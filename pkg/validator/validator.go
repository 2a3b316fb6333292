package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError is one failed rule on one field, shaped for JSON error bodies.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Rule)
}

var validate = validator.New()

func init() {
	// uuid.UUID zero value passes "required", so weak references need
	// their own rule.
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})
}

// ValidateStruct runs the tag rules on data and returns one FieldError per
// violation, nil when the struct is valid.
func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var out []FieldError
	for _, ve := range err.(validator.ValidationErrors) {
		out = append(out, FieldError{
			Field: ve.StructNamespace(),
			Rule:  ve.Tag(),
			Param: ve.Param(),
		})
	}
	return out
}
