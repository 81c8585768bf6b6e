package view

import (
	"testing"

	"laptop-request-catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func strPtr(s string) *string { return &s }

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, "$0"},
		{999, "$999"},
		{1899, "$1,899"},
		{1299.5, "$1,299.5"},
		{1234567.891, "$1,234,567.891"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.price))
	}
}

func TestPriceFormatterLocale(t *testing.T) {
	f := NewPriceFormatter(language.German, "€")
	assert.Equal(t, "€1.899,5", f.Format(1899.5))
}

func TestBuild_Empty(t *testing.T) {
	for _, laptops := range [][]models.Laptop{nil, {}} {
		c := Build(laptops)
		assert.True(t, c.Empty)
		assert.Equal(t, EmptyMessage, c.EmptyMessage)
		assert.Empty(t, c.Cards)
	}
}

func TestBuild_OneCardPerLaptopInOrder(t *testing.T) {
	laptops := []models.Laptop{
		{ID: "3", Name: "Zenbook", Brand: "Asus", Price: 999, Available: true},
		{ID: "1", Name: "ThinkPad X1", Brand: "Lenovo", Price: 1899, Available: true},
		{ID: "2", Name: "MacBook Air", Brand: "Apple", Price: 1099, Available: false},
	}

	c := Build(laptops)
	require.False(t, c.Empty)
	require.Len(t, c.Cards, len(laptops))
	for i, l := range laptops {
		assert.Equal(t, l.ID, c.Cards[i].ID, "card %d out of order", i)
	}
}

func TestNewCard_DisabledIffUnavailable(t *testing.T) {
	for _, available := range []bool{true, false} {
		card := NewCard(defaultPrices, models.Laptop{ID: "1", Available: available})
		assert.Equal(t, !available, card.Disabled)
		if available {
			assert.Equal(t, RequestLabel, card.ActionLabel)
		} else {
			assert.Equal(t, UnavailableLabel, card.ActionLabel)
		}
	}
}

func TestNewCard_Fields(t *testing.T) {
	card := NewCard(defaultPrices, models.Laptop{
		ID:         "1",
		Name:       "ThinkPad X1",
		Brand:      "Lenovo",
		Processor:  "Intel Core i7",
		RAM:        "16GB",
		Storage:    "512GB SSD",
		ScreenSize: "14\"",
		ImageURL:   strPtr("https://img.example.com/x1.png"),
		Price:      1899,
		Available:  true,
	})

	assert.Equal(t, "$1,899", card.Price)
	assert.Equal(t, "Intel Core i7", card.Processor)
	assert.True(t, card.HasImage)
	assert.Equal(t, "https://img.example.com/x1.png", card.ImageURL)
	assert.False(t, card.Disabled)

	placeholder := NewCard(defaultPrices, models.Laptop{ID: "2", ImageURL: strPtr("")})
	assert.False(t, placeholder.HasImage)
	assert.Empty(t, placeholder.ImageURL)
}
