// Package view renders the laptop catalog and the request dialog.
package view

import (
	"laptop-request-catalog/internal/models"
)

const (
	EmptyMessage     = "No laptops available at the moment"
	RequestLabel     = "Request This Laptop"
	UnavailableLabel = "Unavailable"
	OutOfStockLabel  = "Out of Stock"
)

// Card is the rendered summary of one laptop.
type Card struct {
	ID          string
	Name        string
	Brand       string
	Price       string
	Processor   string
	RAM         string
	Storage     string
	ScreenSize  string
	ImageURL    string
	HasImage    bool
	Available   bool
	Disabled    bool
	ActionLabel string
}

// Catalog is the rendered catalog: either an explicit empty state or one
// card per laptop in the order received.
type Catalog struct {
	Empty        bool
	EmptyMessage string
	Cards        []Card
}

// Build renders laptops without re-ordering them.
func Build(laptops []models.Laptop) Catalog {
	return BuildWith(defaultPrices, laptops)
}

// BuildWith renders laptops using prices for the price labels.
func BuildWith(prices PriceFormatter, laptops []models.Laptop) Catalog {
	if len(laptops) == 0 {
		return Catalog{Empty: true, EmptyMessage: EmptyMessage}
	}
	cards := make([]Card, 0, len(laptops))
	for _, l := range laptops {
		cards = append(cards, NewCard(prices, l))
	}
	return Catalog{Cards: cards}
}

// NewCard renders a single laptop. The request control is disabled
// exactly when the laptop is not available.
func NewCard(prices PriceFormatter, l models.Laptop) Card {
	c := Card{
		ID:          l.ID,
		Name:        l.Name,
		Brand:       l.Brand,
		Price:       prices.Format(l.Price),
		Processor:   l.Processor,
		RAM:         l.RAM,
		Storage:     l.Storage,
		ScreenSize:  l.ScreenSize,
		HasImage:    l.HasImage(),
		Available:   l.Available,
		Disabled:    !l.Available,
		ActionLabel: RequestLabel,
	}
	if c.HasImage {
		c.ImageURL = *l.ImageURL
	}
	if c.Disabled {
		c.ActionLabel = UnavailableLabel
	}
	return c
}
