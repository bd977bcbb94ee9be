package entity

// Algorithm describes one registered hashing strategy as seen from this host.
type Algorithm struct {
	Name       string
	Descriptor string
	Available  bool
	Configured bool
	// Reason explains why Available is false.
	Reason string
}
