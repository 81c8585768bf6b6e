package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"laptop-request-catalog/internal/form"
	"laptop-request-catalog/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is everything the catalog page shows.
type PageData struct {
	Loading      bool
	Catalog      Catalog
	Notification *Notification
	Dialog       *Dialog
}

// Notification is the rendered notification banner.
type Notification struct {
	Success     bool
	Message     string
	ExpiresInMS int64
}

// NewNotification renders n, which clears itself after remaining.
func NewNotification(n models.Notification, remaining time.Duration) *Notification {
	if remaining < 0 {
		remaining = 0
	}
	return &Notification{
		Success:     n.Kind == models.NotificationSuccess,
		Message:     n.Message,
		ExpiresInMS: remaining.Milliseconds(),
	}
}

// Dialog is the rendered request form.
type Dialog struct {
	Laptop     Card
	Values     form.Input
	Errors     map[string]string
	Submitting bool
}

// NewDialog renders f.
func NewDialog(prices PriceFormatter, f *form.Form) *Dialog {
	return &Dialog{
		Laptop:     NewCard(prices, f.Laptop()),
		Values:     f.Values(),
		Errors:     f.Errors(),
		Submitting: f.Submitting(),
	}
}

// Renderer executes the embedded page templates.
type Renderer struct {
	page *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"outOfStock": func() string { return OutOfStockLabel },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{page: tmpl}, nil
}

// Page writes the full catalog page.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.page.ExecuteTemplate(w, "page", data)
}
