package config

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func init() {
	// Report rule failures under their YAML keys.
	validation.ErrorTag = "yaml"
}

// ValidationError is a configuration error at a YAML path, optionally
// located in the file that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// toValidationError reduces an ozzo error tree to its first failing path in
// key order.
func toValidationError(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	path, leaf := firstFailure("", err)
	return &ValidationError{Path: path, Err: leaf}
}

func firstFailure(prefix string, err error) (string, error) {
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return prefix, err
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := keys[0]
	path := key
	if prefix != "" {
		path = prefix + "." + key
	}
	return firstFailure(path, errs[key])
}
