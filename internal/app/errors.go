package app

import (
	"errors"
	"fmt"
	"net/http"

	"termo/api/internal/handover"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}

	var herr *handover.Error
	if !errors.As(err, &herr) {
		return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
	}

	switch herr.Kind {
	case handover.ValidationFailure:
		return http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", herr.Fields
	case handover.SafetyLimitExceeded:
		return http.StatusBadRequest, "SAFETY_LIMIT", herr.Message, herr.Details
	case handover.TemplateNotFound:
		return http.StatusNotFound, "TEMPLATE_NOT_FOUND", herr.Message, herr.Details
	case handover.ConfigurationMissing:
		return http.StatusInternalServerError, "CONFIG_ERROR", "Configuração incompleta", nil
	case handover.RemoteServiceFailure:
		return http.StatusBadGateway, "SHEETS_ERROR", "Erro na planilha: " + herr.Message, nil
	case handover.DocumentAssemblyFailure:
		return http.StatusInternalServerError, "DOCUMENT_ERROR", "Erro na geração do documento: " + herr.Message, nil
	default:
		return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
	}
}
