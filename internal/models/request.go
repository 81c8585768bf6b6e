package models

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidRequest is returned when a request payload is missing a field.
var ErrInvalidRequest = errors.New("laptop_model_id, requester_name, requester_email and business_justification are required")

// LaptopRequest is a stored request row. id, status and the timestamps are
// assigned by the data store.
type LaptopRequest struct {
	ID                    string    `json:"id" db:"id"`
	LaptopModelID         string    `json:"laptop_model_id" db:"laptop_model_id"`
	RequesterName         string    `json:"requester_name" db:"requester_name"`
	RequesterEmail        string    `json:"requester_email" db:"requester_email"`
	BusinessJustification string    `json:"business_justification" db:"business_justification"`
	Status                string    `json:"status" db:"status"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// NewLaptopRequest is the insert payload for a request.
type NewLaptopRequest struct {
	LaptopModelID         string `json:"laptop_model_id"`
	RequesterName         string `json:"requester_name"`
	RequesterEmail        string `json:"requester_email"`
	BusinessJustification string `json:"business_justification"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r NewLaptopRequest) Trimmed() NewLaptopRequest {
	return NewLaptopRequest{
		LaptopModelID:         strings.TrimSpace(r.LaptopModelID),
		RequesterName:         strings.TrimSpace(r.RequesterName),
		RequesterEmail:        strings.TrimSpace(r.RequesterEmail),
		BusinessJustification: strings.TrimSpace(r.BusinessJustification),
	}
}

// Validate checks that every field is non-empty after trimming.
func (r NewLaptopRequest) Validate() error {
	t := r.Trimmed()
	if t.LaptopModelID == "" || t.RequesterName == "" || t.RequesterEmail == "" || t.BusinessJustification == "" {
		return ErrInvalidRequest
	}
	return nil
}
