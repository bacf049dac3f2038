// Package validator provides a small validation abstraction for request
// structs.
//
// Business code depends on the Validator interface. The go-playground v10
// implementation reports failures as a field-to-message map keyed in
// snake_case, with English messages.
package validator
