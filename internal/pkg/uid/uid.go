// Package uid generates identifiers.
//
// Numeric IDs (snowflake) identify stored records; string IDs (UUIDv7)
// identify requests, events, and tokens.
package uid

// StringID produces string identifiers.
type StringID interface {
	Generate() string
}

// NumberID produces positive int64 identifiers.
type NumberID interface {
	Generate() int64
}
