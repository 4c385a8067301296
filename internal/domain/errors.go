package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrNoStore             = errors.New("no store found")
	ErrStoreNotFound       = errors.New("store not found")
	ErrUnknownStore        = errors.New("unknown store")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrMissingHeaders      = errors.New("missing headers")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// ConfigError reports a required configuration value that is absent.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Field)
}
