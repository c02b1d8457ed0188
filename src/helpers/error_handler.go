package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tariff-observer/src/logger"
	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TariffObserverError struct {
	Message string
	Cause   error
}

func (e *TariffObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TariffObserverError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As
type ConfigurationError struct{ TariffObserverError }
type NetworkError struct{ TariffObserverError }
type CacheError struct{ TariffObserverError }

// SchemaError reports a required column absent from a source table.
// The source is excluded, the pipeline continues.
type SchemaError struct {
	TariffObserverError
	Source string
	Column string
}

// ParseError reports a single cell that failed its expected format.
// The value becomes missing.
type ParseError struct {
	TariffObserverError
	Column string
	Row    int
	Value  string
}

// AlignmentError is a panel invariant violation. It is never converted
// into a diagnostic.
type AlignmentError struct{ TariffObserverError }

// -----------------------------------------------------------------------------

func NewSchemaError(source, column string) *SchemaError {
	return &SchemaError{
		TariffObserverError: TariffObserverError{Message: fmt.Sprintf("source %q: required column %q not found", source, column)},
		Source:              source,
		Column:              column,
	}
}

func NewParseError(column string, row int, value string, cause error) *ParseError {
	return &ParseError{
		TariffObserverError: TariffObserverError{Message: fmt.Sprintf("column %q row %d: cannot parse %q", column, row, value), Cause: cause},
		Column:              column,
		Row:                 row,
		Value:               value,
	}
}

func NewAlignmentError(format string, args ...interface{}) *AlignmentError {
	return &AlignmentError{TariffObserverError{Message: fmt.Sprintf(format, args...)}}
}

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{TariffObserverError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{TariffObserverError{Message: message, Cause: cause}}
}

func NewCacheError(message string, cause error) *CacheError {
	return &CacheError{TariffObserverError{Message: message, Cause: cause}}
}

// IsAlignmentError reports whether err carries an AlignmentError.
func IsAlignmentError(err error) bool {
	var ae *AlignmentError
	return errors.As(err, &ae)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff executes fn once plus up to maxRetries retries, doubling
// baseDelay after each failure. It stops early when ctx is done.
func RetryWithBackoff[T any](ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if maxRetries < 0 {
		maxRetries = 0
	}
	attempts := maxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == attempts-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, attempts, operation, err, delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	mu         sync.Mutex
	ErrorCount int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.mu.Lock()
	e.ErrorCount = 0
	e.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Diagnose converts a per-source failure into a recoverable diagnostic.
// AlignmentError is not a source failure and yields ok == false.
func (e *ErrorHandler) Diagnose(source string, err error) (models.MDiagnostic, bool) {
	if err == nil || IsAlignmentError(err) {
		return models.MDiagnostic{}, false
	}

	e.mu.Lock()
	e.ErrorCount++
	e.mu.Unlock()

	d := models.MDiagnostic{
		Source:   source,
		Severity: models.SeverityWarning,
		Message:  err.Error(),
	}

	var (
		schemaErr *SchemaError
		parseErr  *ParseError
		netErr    *NetworkError
		cacheErr  *CacheError
	)
	switch {
	case errors.As(err, &schemaErr):
		d.Kind = models.DiagSchema
		d.Column = schemaErr.Column
	case errors.As(err, &parseErr):
		d.Kind = models.DiagParse
		d.Column = parseErr.Column
		d.Row = parseErr.Row
	case errors.As(err, &cacheErr):
		d.Kind = models.DiagCache
		d.Severity = models.SeverityInfo
	case errors.As(err, &netErr):
		d.Kind = models.DiagFetch
	default:
		d.Kind = models.DiagFetch
	}

	e.Logger.Warning("Source %s skipped (%s): %v", source, d.Kind, err)
	return d, true
}
