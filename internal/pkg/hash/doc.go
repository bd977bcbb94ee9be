// Package hash provides interchangeable password hashing strategies.
//
// Every strategy turns a plaintext credential into a self-describing stored
// hash and verifies a plaintext against a stored hash. Cost parameters are
// resolved once at construction; afterwards Hash and Verify are pure functions
// of their inputs and are safe for concurrent use.
//
// Strategies are selected by name through a [Registry]. Construction fails
// with an [UnsupportedAlgorithmError] when the host cannot run the algorithm,
// and callers are expected to reject the configuration rather than fall back.
//
// Verify never returns an error: a wrong password, a foreign algorithm and a
// corrupt stored hash all produce false.
//
// Hash and Verify are deliberately slow and memory hungry. Run them through a
// [Pool] when serving requests so that memory cost times in-flight calls stays
// bounded.
package hash
