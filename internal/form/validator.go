package form

import "strings"

// Validator collects field-level errors.
type Validator struct {
	Errors map[string]string
}

// NewValidator returns an empty validator.
func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether no errors were recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records message for key unless key already has one.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check records message for key when ok is false.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// NotBlank reports whether s has content other than whitespace.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
