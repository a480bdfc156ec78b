package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator.  Field names in
// validation errors are the JSON names of the request fields.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator reporting JSON field names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate runs the struct's validate tags.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// bind decodes the request body into dst and validates it.  Malformed bodies
// and missing required fields are returned as 400 errors.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return badRequest(fmt.Sprintf("Require %s in request", joinFields(fields)))
		}
		return badRequest(err.Error())
	}
	return nil
}

// joinFields renders ["a","b","c"] as "a, b and c".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	}
	return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
}
