package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// missingTags are the validation tags whose failure means a value is absent
// rather than wrong.
var missingTags = map[string]bool{
	"required": true,
	"min":      true,
	"len":      true,
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report keys the way they appear in the configuration document.
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks a resolved configuration. Absent required values are
// reported as ErrMissingConfiguration, unusable values as
// ErrInvalidConfiguration. Both may be present in the returned error.
func Validate(c Config) error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		key := fieldKey(fe)
		if missingTags[fe.Tag()] {
			missing = append(missing, key)
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s (%s=%s)", key, fe.Tag(), fe.Param()))
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingConfiguration, strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(invalid, ", ")))
	}
	return errors.Join(errs...)
}

// fieldKey strips the root struct name from the validator namespace.
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
