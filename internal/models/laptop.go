package models

import "time"

// Laptop is one catalog entry. Laptops are maintained outside this
// application and only ever read here.
type Laptop struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Brand      string    `json:"brand" db:"brand"`
	Processor  string    `json:"processor" db:"processor"`
	RAM        string    `json:"ram" db:"ram"`
	Storage    string    `json:"storage" db:"storage"`
	ScreenSize string    `json:"screen_size" db:"screen_size"`
	ImageURL   *string   `json:"image_url,omitempty" db:"image_url"`
	Price      float64   `json:"price" db:"price"`
	Available  bool      `json:"available" db:"available"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// HasImage reports whether the laptop carries a non-empty image reference.
func (l Laptop) HasImage() bool {
	return l.ImageURL != nil && *l.ImageURL != ""
}
