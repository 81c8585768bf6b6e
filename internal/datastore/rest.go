package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"laptop-request-catalog/internal/models"

	"github.com/rs/zerolog"
)

const maxErrorBody = 64 << 10

// RESTClient talks to a PostgREST-compatible endpoint such as the one a
// hosted Postgres service exposes under /rest/v1.
type RESTClient struct {
	base         *url.URL
	key          string
	laptopTable  string
	requestTable string
	timeout      time.Duration
	http         *http.Client
	logger       zerolog.Logger
}

// NewRESTClient creates a REST backend. The access key is sent both as the
// apikey header and as a bearer token.
func NewRESTClient(opts Options, logger zerolog.Logger) (*RESTClient, error) {
	opts = opts.withDefaults()
	base, err := url.Parse(strings.TrimRight(opts.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse data service url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("rest backend needs an http(s) url, got %q", base.Scheme)
	}
	if opts.Key == "" {
		return nil, errors.New("rest backend needs an access key")
	}
	return &RESTClient{
		base:         base,
		key:          opts.Key,
		laptopTable:  opts.LaptopTable,
		requestTable: opts.RequestTable,
		timeout:      opts.Timeout,
		http:         &http.Client{Timeout: opts.Timeout},
		logger:       logger.With().Str("component", "datastore").Str("backend", "rest").Logger(),
	}, nil
}

func (c *RESTClient) endpoint(table string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/rest/v1/" + url.PathEscape(table)
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *RESTClient) authorize(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
}

// ListLaptops implements Client.
func (c *RESTClient) ListLaptops(ctx context.Context) ([]models.Laptop, error) {
	const op = "list laptops"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "brand.asc")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.laptopTable, q), nil)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{Op: op, Status: resp.StatusCode, Err: decodeServiceError(resp)}
	}

	var laptops []models.Laptop
	if err := json.NewDecoder(resp.Body).Decode(&laptops); err != nil {
		return nil, &FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if laptops == nil {
		laptops = []models.Laptop{}
	}

	c.logger.Debug().Int("count", len(laptops)).Dur("took", time.Since(start)).Msg("catalog fetched")
	return laptops, nil
}

// CreateRequest implements Client.
func (c *RESTClient) CreateRequest(ctx context.Context, in models.NewLaptopRequest) error {
	const op = "create request"
	if err := in.Validate(); err != nil {
		return &SubmitError{Op: op, Err: err}
	}
	in = in.Trimmed()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return &SubmitError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.requestTable, url.Values{}), bytes.NewReader(body))
	if err != nil {
		return &SubmitError{Op: op, Err: err}
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &SubmitError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		svcErr := decodeServiceError(resp)
		code := ""
		var se *ServiceError
		if errors.As(svcErr, &se) {
			code = se.Code
		}
		return &SubmitError{Op: op, Status: resp.StatusCode, Code: code, Err: svcErr}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug().Str("laptop_model_id", in.LaptopModelID).Dur("took", time.Since(start)).Msg("request created")
	return nil
}

// Close releases idle connections.
func (c *RESTClient) Close() {
	c.http.CloseIdleConnections()
}

func decodeServiceError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("read error body: %w", err)
	}
	var se ServiceError
	if err := json.Unmarshal(raw, &se); err == nil && (se.Message != "" || se.Code != "") {
		return &se
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return errors.New(text)
}
