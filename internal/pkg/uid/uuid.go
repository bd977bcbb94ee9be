package uid

import "github.com/google/uuid"

// UUID generates the correlation IDs attached to requests that arrive without
// one. IDs are UUIDv7 so they sort by creation time in log search; UUIDv4 is
// used if a v7 cannot be produced.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID string.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
