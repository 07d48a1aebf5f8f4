package speq

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var routeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("routename", func(fl validator.FieldLevel) bool {
		return routeNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pathpattern", func(fl validator.FieldLevel) bool {
		_, err := pathParams(fl.Field().String())
		return err == nil
	})
	return v
}

// routeMeta is the validated view of a route's metadata.
type routeMeta struct {
	Name      string         `validate:"required,max=128,routename"`
	Method    string         `validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS TRACE"`
	Path      string         `validate:"required,pathpattern"`
	Responses []responseMeta `validate:"unique=Status,dive"`
}

type responseMeta struct {
	Status      int    `validate:"gte=100,lte=599"`
	Description string `validate:"max=1024"`
}

func specMeta(spec *RouteSpec) routeMeta {
	m := routeMeta{
		Name:      spec.Name,
		Method:    spec.Method,
		Path:      spec.Path,
		Responses: make([]responseMeta, 0, len(spec.Responses)),
	}
	for _, resp := range spec.Responses {
		m.Responses = append(m.Responses, responseMeta{Status: resp.Status, Description: resp.Description})
	}
	return m
}

// validateMeta checks route metadata, returning a *MetadataError that lists
// every problem found.
func validateMeta(m routeMeta) error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("route %s: %w: %w", m.Name, ErrMalformedMetadata, err)
	}

	name := m.Name
	if name == "" {
		name = m.Method + " " + m.Path
	}
	me := &MetadataError{Route: name, Errors: make([]FieldError, 0, len(valErrs))}
	for _, ve := range valErrs {
		me.Errors = append(me.Errors, FieldError{
			Field:   strings.TrimPrefix(ve.Namespace(), "routeMeta."),
			Message: formatValidationError(ve),
			Value:   ve.Value(),
		})
	}
	return me
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "unique":
		return fmt.Sprintf("%s must be unique", ve.Param())
	case "routename":
		return "must start with a letter or underscore and contain only letters, digits, '_', '.', or '-'"
	case "pathpattern":
		_, err := pathParams(ve.Value().(string))
		return err.Error()
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
