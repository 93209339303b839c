package handover

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	ConfigurationMissing
	TemplateNotFound
	RemoteServiceFailure
	ValidationFailure
	DocumentAssemblyFailure
	SafetyLimitExceeded
)

func (k Kind) String() string {
	switch k {
	case ConfigurationMissing:
		return "configuration_missing"
	case TemplateNotFound:
		return "template_not_found"
	case RemoteServiceFailure:
		return "remote_service_failure"
	case ValidationFailure:
		return "validation_failure"
	case DocumentAssemblyFailure:
		return "document_assembly_failure"
	case SafetyLimitExceeded:
		return "safety_limit_exceeded"
	default:
		return "unknown"
	}
}

// FieldError is one failed form check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured failure returned by the pipeline. Field names the
// offending form field or asset identifier; Fields carries every validation
// failure at once.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Fields  []FieldError
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.String() + ": " + e.Message
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Kind
	}
	return KindUnknown
}

func validationError(fields []FieldError) *Error {
	return &Error{
		Kind:    ValidationFailure,
		Message: "Validation failed",
		Fields:  fields,
	}
}
