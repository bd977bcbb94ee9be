// Package validator checks decoded request structs before they reach a hash
// strategy.
//
// Besides the stock go-playground rules it registers "password" (non-empty
// UTF-8, at most MaxPasswordBytes) and "storedhash" (printable ASCII without
// whitespace). Failures come back as V10ValidationError keyed by JSON field
// name.
package validator
