package validator

// Validator validates request structs using their `validate` tags.
type Validator interface {
	Validate(data any) error
}
