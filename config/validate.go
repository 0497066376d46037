package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks a config struct against its validate tags and
// returns a single readable error listing every violated field.
func ValidateStruct(cfg interface{}) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("config validation: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got: %v)", field, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got: %v)", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation (got: %v)", field, fe.Tag(), fe.Value())
	}
}
