package errors

import "fmt"

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(key, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, key)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("key", key).
		WithContext("operation", operation)
}

// InvalidOption reports a setting whose value is not one of the accepted ones
func InvalidOption(key, value string, accepted ...string) *BaseError {
	err := Newf(ConfigurationErrorCode, "invalid %s %q", key, value).
		WithContext("key", key).
		WithContext("value", value)
	if len(accepted) > 0 {
		err.WithSuggestion(fmt.Sprintf("use one of: %v", accepted))
	}
	return err
}

// InvalidCursor reports a cursor that does not point into the document
func InvalidCursor(file string, cursor, size int) *BaseError {
	return Newf(InputErrorCode, "cursor %d is outside the document (size %d)", cursor, size).
		WithLocation(SourceLocation{File: file}).
		WithSuggestion("cursor is a byte offset between 0 and the document size")
}

// WrapServerError wraps failures of the HTTP service
func WrapServerError(operation string, cause error) *BaseError {
	return Wrap(ServerErrorCode, fmt.Sprintf("failed to %s server", operation), cause).
		WithContext("operation", operation)
}
