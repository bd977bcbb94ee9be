// Package uid generates identifiers for requests and log correlation.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
