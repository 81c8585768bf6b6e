package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PriceFormatter renders prices with the grouping rules of a locale.
type PriceFormatter struct {
	tag    language.Tag
	symbol string
}

// NewPriceFormatter returns a formatter for tag that prefixes symbol.
func NewPriceFormatter(tag language.Tag, symbol string) PriceFormatter {
	return PriceFormatter{tag: tag, symbol: symbol}
}

var defaultPrices = NewPriceFormatter(language.AmericanEnglish, "$")

// Format renders price with thousands separators and at most three
// fraction digits, e.g. "$1,899" or "$1,299.5".
func (f PriceFormatter) Format(price float64) string {
	p := message.NewPrinter(f.tag)
	return f.symbol + p.Sprint(number.Decimal(price, number.MaxFractionDigits(3)))
}

// FormatPrice formats price for en-US.
func FormatPrice(price float64) string {
	return defaultPrices.Format(price)
}

// DefaultPrices returns the en-US dollar formatter.
func DefaultPrices() PriceFormatter {
	return defaultPrices
}
