package mediapress

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error types
var (
	// ErrPostNotFound indicates a post record was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrProductNotFound indicates a product record was not found
	ErrProductNotFound = errors.New("product not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a registration with an already used email
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrImageNotFound indicates a referenced image is missing from the blob store
	ErrImageNotFound = errors.New("image not found")
)

// IsNotFound reports whether err is one of the record-not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrImageNotFound)
}

// ValidationError reports one or more failed field constraints. No mutation
// has occurred when a ValidationError is returned.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed for %s", strings.Join(names, ", "))
}

// Add appends a message for a field, creating the map entry as needed.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// AsValidationError unwraps err into a *ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StorageError represents a failed blob store operation
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
