package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks malformed column, row id or rule declarations.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidDirection is returned when a mover receives a direction outside its axis.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidCellID is returned for empty, malformed or unresolvable cell ids.
	ErrInvalidCellID = errors.New("invalid cell id")

	// ErrLookupResolution is returned when a row value is missing from its column's options.
	ErrLookupResolution = errors.New("lookup value not in options")
)

type ConfigurationError struct {
	Reason string
	Fields []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) == 0 {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// ConfigErr builds a *ConfigurationError naming the offending fields.
func ConfigErr(reason string, fields ...string) error {
	return &ConfigurationError{Reason: reason, Fields: fields}
}

type LookupResolutionError struct {
	Field string
	Value any
}

func (e *LookupResolutionError) Error() string {
	return fmt.Sprintf("lookup value not in options: field %s value %v", e.Field, e.Value)
}

func (e *LookupResolutionError) Unwrap() error { return ErrLookupResolution }
