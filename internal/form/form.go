// Package form implements the request dialog: a form bound to one laptop
// that collects the requester's name, email and business justification.
package form

import (
	"errors"
	"strings"

	"laptop-request-catalog/internal/models"
)

// Field keys, also used as the HTML input names.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldJustification = "justification"
)

var (
	// ErrInvalid is returned when a required field is blank.
	ErrInvalid = errors.New("form has invalid fields")
	// ErrSubmitting is returned when the form is already submitting.
	ErrSubmitting = errors.New("form is already submitting")
)

// Input holds the raw field values as entered.
type Input struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Justification string `json:"justification"`
}

// Trimmed returns the input with surrounding whitespace removed.
func (in Input) Trimmed() Input {
	return Input{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Justification: strings.TrimSpace(in.Justification),
	}
}

// Validate checks that every field is present. Email syntax is not
// checked beyond presence.
func (in Input) Validate() map[string]string {
	v := NewValidator()
	v.Check(NotBlank(in.Name), FieldName, "Name is required")
	v.Check(NotBlank(in.Email), FieldEmail, "Email is required")
	v.Check(NotBlank(in.Justification), FieldJustification, "Business justification is required")
	if v.Valid() {
		return nil
	}
	return v.Errors
}

// Request builds the insert payload for laptopID from trimmed values.
func (in Input) Request(laptopID string) models.NewLaptopRequest {
	t := in.Trimmed()
	return models.NewLaptopRequest{
		LaptopModelID:         laptopID,
		RequesterName:         t.Name,
		RequesterEmail:        t.Email,
		BusinessJustification: t.Justification,
	}
}

// Form is the request dialog for exactly one laptop. It is not safe for
// concurrent use; the owner serializes access.
type Form struct {
	laptop     models.Laptop
	values     Input
	errors     map[string]string
	submitting bool
}

// New opens a form for laptop.
func New(laptop models.Laptop) *Form {
	return &Form{laptop: laptop}
}

// Laptop returns the bound laptop.
func (f *Form) Laptop() models.Laptop { return f.laptop }

// Values returns the last entered values.
func (f *Form) Values() Input { return f.values }

// Errors returns the field errors of the last rejected submit.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Submitting reports whether a submit is in flight.
func (f *Form) Submitting() bool { return f.submitting }

// CanClose reports whether the dialog may be dismissed. Closing is refused
// while a submit is in flight.
func (f *Form) CanClose() bool { return !f.submitting }

// Submit validates in. Blank fields leave the form open with field errors
// and return ErrInvalid. Otherwise the form enters the submitting state
// and returns the request to send, carrying the bound laptop's id.
func (f *Form) Submit(in Input) (models.NewLaptopRequest, error) {
	if f.submitting {
		return models.NewLaptopRequest{}, ErrSubmitting
	}
	f.values = in
	if errs := in.Validate(); errs != nil {
		f.errors = errs
		return models.NewLaptopRequest{}, ErrInvalid
	}
	f.errors = nil
	f.submitting = true
	return in.Request(f.laptop.ID), nil
}

// Done leaves the submitting state.
func (f *Form) Done() {
	f.submitting = false
}
