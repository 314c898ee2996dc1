package serverutils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidJSON = errors.New("Invalid JSON in request body")
	ErrInvalidBody = errors.New("Invalid request body")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError carries the first failing field as a client message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalizer is implemented by requests that clean their fields before
// validation, e.g. lower-casing an email.
type Normalizer interface {
	Normalize()
}

// fieldMessages overrides the generic messages for specific field/tag pairs.
var fieldMessages = map[string]string{
	"email.required":    "Valid email is required",
	"email.chatemail":   "Invalid email format",
	"password.required": "Password is required",
	"password.min":      "Password must be at least %s characters",
	"chatId.required":   "Valid chatId is required",
	"chatId.uuid":       "Valid chatId is required",
	"message.required":  "Message cannot be empty",
	"message.max":       "Message too long (max %s characters)",
	"title.required":    "Title cannot be empty",
	"title.max":         "Title too long (max %s characters)",
	"q.required":        "Search query is required",
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("chatemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s and converts the first failure to a ValidationError.
func (v *Validator) Struct(s interface{}) error {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}

	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: messageFor(fe)}
}

// DecodeJSON unmarshals a request body that must be a JSON object, then
// validates it.
func (v *Validator) DecodeJSON(body []byte, dst interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !json.Valid(body) {
		return ErrInvalidJSON
	}
	if body[0] != '{' {
		return ErrInvalidBody
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &ValidationError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("Invalid value for %s", typeErr.Field),
			}
		}
		return ErrInvalidBody
	}

	return v.Struct(dst)
}

func messageFor(fe validator.FieldError) string {
	if tmpl, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		if strings.Contains(tmpl, "%s") {
			return fmt.Sprintf(tmpl, fe.Param())
		}
		return tmpl
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s too long (max %s characters)", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("Valid %s is required", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
