// Package uid provides ID generators behind small interfaces so callers can
// swap deterministic fakes in tests.
package uid

// NumberID generates numeric identifiers for persisted entities.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers (correlation IDs and the like).
type StringID interface {
	Generate() string
}
