package entity

// Operation names a credential use case in telemetry.
type Operation string

const (
	OperationHash       Operation = "hash"
	OperationVerify     Operation = "verify"
	OperationInspect    Operation = "inspect"
	OperationAlgorithms Operation = "algorithms"
)

// Outcome classifies how a use case call ended.
type Outcome int8

const (
	// OutcomeUnknown is the zero value and never recorded.
	OutcomeUnknown Outcome = iota
	// OutcomeOK means the operation completed.
	OutcomeOK
	// OutcomeMatch means a plaintext matched its stored hash.
	OutcomeMatch
	// OutcomeMismatch means a plaintext did not match, or the stored hash was
	// unusable.
	OutcomeMismatch
	// OutcomeInvalid means the input failed validation.
	OutcomeInvalid
	// OutcomeUnavailable means the hashing pool was saturated or timed out.
	OutcomeUnavailable
	// OutcomeError means an unexpected failure.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMatch:
		return "match"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}
