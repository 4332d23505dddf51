package errors

import "fmt"

// Error codes
const (
	CodeSourceError = "SOURCE_ERROR"
	CodeCache       = "CACHE_ERROR"
)

type DirectoryError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *DirectoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DirectoryError) Unwrap() error {
	return e.Cause
}

// SourceError marks a failed read against a record source. A primary-source
// failure aborts the whole view; a secondary-source failure is degraded by the
// caller and never surfaces past a log line.
type SourceError struct {
	*DirectoryError
	Source string
}

func NewSourceError(message, source string, statusCode int, cause error) *SourceError {
	return &SourceError{
		DirectoryError: &DirectoryError{
			Message:    message,
			Code:       CodeSourceError,
			StatusCode: statusCode,
			Context: map[string]any{
				"source": source,
			},
			Cause: cause,
		},
		Source: source,
	}
}

type CacheError struct {
	*DirectoryError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		DirectoryError: &DirectoryError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}
