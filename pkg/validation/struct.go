package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structOnce     sync.Once
	structValidate *validator.Validate
)

// validate returns the shared validator, configured to report JSON field
// names and to understand the custom tags used by the schema records.
func validate() *validator.Validate {
	structOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("pauli", validatePauli)
		_ = v.RegisterValidation("schemaversion", validateSchemaVersion)
		structValidate = v
	})
	return structValidate
}

// validatePauli accepts strings over the single-qubit Pauli alphabet.
func validatePauli(fl validator.FieldLevel) bool {
	return IsPauliString(fl.Field().String())
}

func validateSchemaVersion(fl validator.FieldLevel) bool {
	return schemaVersionPattern.MatchString(fl.Field().String())
}

// IsPauliString reports whether s only contains the letters I, X, Y and Z.
func IsPauliString(s string) bool {
	for _, r := range s {
		switch r {
		case 'I', 'X', 'Y', 'Z':
		default:
			return false
		}
	}
	return true
}

// Struct checks the `validate` tags of v and converts every violation into a
// *FieldError of kind ErrInvalidField. Multiple violations are joined.
func Struct(v any) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{
			Field:   fieldPath(fe.Namespace()),
			Kind:    ErrInvalidField,
			Message: describe(fe),
		})
	}
	return errors.Join(out...)
}

// fieldPath drops the root struct name and rewrites `[i]` indices into the
// dotted form used by FieldError.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	r := strings.NewReplacer("[", ".", "]", "")
	return r.Replace(ns)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "oneof":
		return fmt.Sprintf("input should be one of [%s], got %v", fe.Param(), fe.Value())
	case "gte", "min":
		return fmt.Sprintf("input should be greater than or equal to %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("input should be greater than %s, got %v", fe.Param(), fe.Value())
	case "lte", "max":
		return fmt.Sprintf("input should be less than or equal to %s, got %v", fe.Param(), fe.Value())
	case "eq":
		return fmt.Sprintf("input should be %q, got %v", fe.Param(), fe.Value())
	case "pauli":
		return fmt.Sprintf("%q is not a Pauli string", fe.Value())
	case "schemaversion":
		return fmt.Sprintf("schema version %q does not match v<major>.<minor>", fe.Value())
	default:
		return fmt.Sprintf("failed on %q constraint", fe.Tag())
	}
}
