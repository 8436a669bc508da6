// util/validation_util.go

package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationUtil checks authority responses against their `validate`
// struct tags before anything is cached.
type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateStruct returns a readable error naming the first failed field.
func (v *ValidationUtil) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return fmt.Errorf("field %s failed on the '%s' rule", verrs[0].Namespace(), verrs[0].Tag())
	}
	return err
}
