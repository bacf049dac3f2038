// Package config exposes typed access to layered configuration: a YAML
// file, optional .env file, and process environment variables.
package config

import (
	"io"
	"time"
)

// Config defines a set of methods for retrieving configuration values.
//
// Missing keys return the zero value of the requested type.
type Config interface {
	io.Closer

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetSecond reads an integer value as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer value as a number of minutes.
	GetMinute(key string) time.Duration

	// GetArray reads a value stored as <element1>,<element2>,...
	// Blank elements are dropped.
	GetArray(key string) []string

	// GetMap reads a value stored as <key1>:<value1>,<key2>:<value2>,...
	GetMap(key string) map[string]string
}
