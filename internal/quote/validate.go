package quote

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern accepts a single "@" followed by a domain containing a dot.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	if err := v.RegisterValidation("quoteemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register quoteemail validation: %v", err))
	}
	return v
}

// ValidationError names every field of a quote request that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "invalid quote request: " + strings.Join(parts, ", ")
}

// Summary is the single-line message shown to the client.
func (e *ValidationError) Summary() string {
	for _, name := range []string{"fullName", "email", "shootDate"} {
		if e.Fields[name] == msgRequired {
			return "Missing required client fields: fullName, email, shootDate"
		}
	}
	if msg, ok := e.Fields["selectedPackage"]; ok {
		if msg == msgRequired {
			return "Missing selected package"
		}
		return "Unknown selected package"
	}
	if _, ok := e.Fields["productionDurationDays"]; ok {
		return "Production duration must be at least 1 day"
	}
	if _, ok := e.Fields["email"]; ok {
		return "Please enter a valid email address"
	}
	if _, ok := e.Fields["shootDate"]; ok {
		return "Shoot date must be a valid date"
	}
	return "Invalid quote request"
}

const (
	msgRequired       = "is required"
	msgInvalidEmail   = "must be a valid email address"
	msgInvalidDate    = "must be a date formatted YYYY-MM-DD"
	msgMinDuration    = "must be at least 1 day"
	msgUnknownPackage = "is not a known package"
)

// Validate checks req before anything is sent. Every failing field is
// reported, not only the first.
func Validate(req Request) error {
	fields := map[string]string{}

	if err := validate.Struct(req.Contact); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("validate contact: %w", err)
		}
		for _, fe := range errs {
			fields[fe.Field()] = validationMessage(fe)
		}
	}

	switch {
	case strings.TrimSpace(req.Selection.PackageName) == "":
		fields["selectedPackage"] = msgRequired
	case req.Breakdown == nil:
		fields["selectedPackage"] = msgUnknownPackage
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "quoteemail":
		return msgInvalidEmail
	case "datetime":
		return msgInvalidDate
	case "gte":
		return msgMinDuration
	}
	return "is invalid"
}
