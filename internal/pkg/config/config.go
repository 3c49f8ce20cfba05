// Package config abstracts runtime configuration behind a read-only
// interface so modules never depend on a concrete configuration library.
package config

import (
	"io"
	"time"
)

// Config retrieves typed configuration values. Implementations decide how
// missing keys are handled; the Viper implementation returns zero values.
type Config interface {
	io.Closer

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32

	// GetInt64 retrieves the value for key as an int64.
	GetInt64(key string) int64

	// GetUint retrieves the value for key as a uint.
	GetUint(key string) uint

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond retrieves the value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the value for key as a duration in minutes.
	GetMinute(key string) time.Duration

	// GetBinary retrieves the value for key as bytes; the stored value is
	// base64 encoded.
	GetBinary(key string) []byte

	// GetArray retrieves the value for key as a string slice; the stored
	// value uses the format <element1>,<element2>,...
	GetArray(key string) []string
}
