// Package validation turns request binding failures into client errors.
//
// Rules are declared with binding tags on the request models and enforced by
// gin's validator engine, which Register extends with the project's custom
// rules. Failures are reported per field using the JSON name the client sent.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/klm-wiki-api/internal/errs"
)

// Register installs the custom rules on gin's default validator
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Configure(v)
}

// Configure adds the custom rules and JSON field naming to v
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// fieldName reports json names, falling back to form names for query structs
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FromBindError converts an error from ShouldBind* into a 400
func FromBindError(err error) *errs.HTTPError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return errs.NewBadRequestError("Validation failed", extractValidationError(validationErrors))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errs.NewBadRequestError("Invalid request body", []errs.FieldError{
			{Field: typeErr.Field, Error: fmt.Sprintf("must be of type %s", typeErr.Type)},
		})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.NewBadRequestError("Malformed JSON body", nil)
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return errs.NewBadRequestError("Invalid query parameters", nil)
	}

	return errs.NewBadRequestError("Invalid request", nil)
}

func extractValidationError(validationErrors validator.ValidationErrors) []errs.FieldError {
	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))

	for _, err := range validationErrors {
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"
		case "notblank":
			msg = "must not be blank"
		case "min":
			switch err.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			case reflect.Slice:
				msg = fmt.Sprintf("must contain at least %s items", err.Param())
			default:
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}
		case "max":
			switch err.Kind() {
			case reflect.String:
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			case reflect.Slice:
				msg = fmt.Sprintf("must not contain more than %s items", err.Param())
			default:
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())
		case "email":
			msg = "must be a valid email address"
		case "uuid":
			msg = "must be a valid UUID"
		case "url":
			msg = "must be a valid URL"
		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("failed %s=%s", err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("failed %s", err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fieldPath(err.Namespace()),
			Error: msg,
		})
	}

	return fieldErrors
}

// fieldPath drops the root struct from a namespace: "ApprovalBatch.approvals[0].sub_id"
// becomes "approvals[0].sub_id"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// IsUUID reports whether s parses as a UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ID validates a path identifier
func ID(field, value string) error {
	if !IsUUID(value) {
		return errs.NewValidationError(field, "must be a valid UUID")
	}
	return nil
}
