package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"laptop-request-catalog/internal/form"
	"laptop-request-catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, data PageData) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, data))
	return buf.String()
}

func TestRenderer_SingleEnabledCard(t *testing.T) {
	html := render(t, PageData{Catalog: Build([]models.Laptop{
		{ID: "1", Name: "ThinkPad X1", Brand: "Lenovo", Price: 1899, Available: true},
	})})

	assert.Equal(t, 1, strings.Count(html, `<article class="card"`))
	assert.Contains(t, html, "$1,899")
	assert.Contains(t, html, `action="/laptops/1/select"`)
	assert.Contains(t, html, RequestLabel)
	assert.NotContains(t, html, "disabled")
	assert.NotContains(t, html, EmptyMessage)
}

func TestRenderer_UnavailableCard(t *testing.T) {
	html := render(t, PageData{Catalog: Build([]models.Laptop{
		{ID: "2", Name: "MacBook Air", Brand: "Apple", Price: 1099, Available: false},
	})})

	assert.Contains(t, html, "card-unavailable")
	assert.Contains(t, html, OutOfStockLabel)
	assert.Contains(t, html, `<button type="submit" disabled>`+UnavailableLabel)
}

func TestRenderer_EmptyState(t *testing.T) {
	html := render(t, PageData{Catalog: Build(nil)})

	assert.Contains(t, html, EmptyMessage)
	assert.NotContains(t, html, "<article")
}

func TestRenderer_Loading(t *testing.T) {
	html := render(t, PageData{Loading: true})

	assert.Contains(t, html, "Loading catalog")
	assert.NotContains(t, html, EmptyMessage)
}

func TestRenderer_Notification(t *testing.T) {
	n := models.Notification{Kind: models.NotificationError, Message: "Failed to load laptop catalog", ShownAt: time.Now()}
	html := render(t, PageData{Catalog: Build(nil), Notification: NewNotification(n, 5*time.Second)})

	assert.Contains(t, html, "notification-error")
	assert.Contains(t, html, "Failed to load laptop catalog")
	assert.Contains(t, html, `data-expires-in="5000"`)
}

func TestRenderer_DialogWithErrors(t *testing.T) {
	laptop := models.Laptop{ID: "1", Name: "ThinkPad X1", Brand: "Lenovo", Price: 1899, Available: true}
	f := form.New(laptop)
	_, err := f.Submit(form.Input{Name: "A", Email: "", Justification: "need it"})
	require.ErrorIs(t, err, form.ErrInvalid)

	html := render(t, PageData{Catalog: Build([]models.Laptop{laptop}), Dialog: NewDialog(defaultPrices, f)})

	assert.Contains(t, html, `role="dialog"`)
	assert.Contains(t, html, "Request ThinkPad X1")
	assert.Contains(t, html, "Email is required")
	assert.Contains(t, html, `value="A"`)
	assert.Contains(t, html, "need it</textarea>")
	assert.NotContains(t, html, `name="laptop_id"`)
}

func TestRenderer_DialogSubmitting(t *testing.T) {
	f := form.New(models.Laptop{ID: "1", Name: "ThinkPad X1", Available: true})
	_, err := f.Submit(form.Input{Name: "A", Email: "a@example.com", Justification: "need it"})
	require.NoError(t, err)

	html := render(t, PageData{Catalog: Build(nil), Dialog: NewDialog(defaultPrices, f)})

	assert.Contains(t, html, "Submitting...")
	assert.Contains(t, html, `<button type="submit" disabled>Cancel</button>`)
}

func TestRenderer_EscapesContent(t *testing.T) {
	html := render(t, PageData{Catalog: Build([]models.Laptop{
		{ID: "1", Name: "<script>alert(1)</script>", Brand: "Evil", Available: true},
	})})

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
