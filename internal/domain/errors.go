package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeDownload   ErrorType = "download"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeDetection  ErrorType = "detection"
	ErrorTypeOCR        ErrorType = "ocr"
	ErrorTypeQuota      ErrorType = "quota"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeSave       ErrorType = "save"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func DownloadError(message string, err error) *DomainError {
	return NewError(ErrorTypeDownload, message, err)
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

func DetectionError(message string, err error) *DomainError {
	return NewError(ErrorTypeDetection, message, err)
}

func OCRError(message string, err error) *DomainError {
	return NewError(ErrorTypeOCR, message, err)
}

func QuotaError(message string, err error) *DomainError {
	return NewError(ErrorTypeQuota, message, err)
}

func TimeoutError(message string, err error) *DomainError {
	return NewError(ErrorTypeTimeout, message, err)
}

func SaveError(message string, err error) *DomainError {
	return NewError(ErrorTypeSave, message, err)
}

// IsQuota reports whether err is (or wraps) a provider quota-exhaustion
// error. This is the one condition that aborts an entire batch run.
func IsQuota(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == ErrorTypeQuota
}
