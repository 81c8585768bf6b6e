// Package datastore is the boundary to the hosted data service that holds
// the laptop catalog and the laptop requests.
package datastore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"laptop-request-catalog/internal/models"

	"github.com/rs/zerolog"
)

// Client exposes the two operations the application needs from the data
// service. Each call performs exactly one round trip and is never retried.
type Client interface {
	// ListLaptops returns the whole catalog ordered by brand ascending.
	ListLaptops(ctx context.Context) ([]models.Laptop, error)
	// CreateRequest inserts one laptop request. Laptop existence is left
	// to the data service.
	CreateRequest(ctx context.Context, req models.NewLaptopRequest) error
}

// Store is a Client that owns resources released by Close.
type Store interface {
	Client
	Close()
}

// Options configures a backend.
type Options struct {
	URL          string
	Key          string
	LaptopTable  string
	RequestTable string
	Timeout      time.Duration
}

func (o Options) withDefaults() Options {
	if o.LaptopTable == "" {
		o.LaptopTable = "laptop_models"
	}
	if o.RequestTable == "" {
		o.RequestTable = "laptop_requests"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// New picks the backend from the URL scheme: http and https talk to a
// PostgREST endpoint, postgres and postgresql connect directly.
func New(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse data service url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewRESTClient(opts, logger)
	case "postgres", "postgresql":
		return NewPostgresClient(ctx, opts, logger)
	default:
		return nil, fmt.Errorf("unsupported data service scheme %q", u.Scheme)
	}
}
