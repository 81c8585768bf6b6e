package datastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"laptop-request-catalog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresClient reads and writes the catalog tables over a direct
// Postgres connection.
type PostgresClient struct {
	pool      *pgxpool.Pool
	timeout   time.Duration
	listSQL   string
	insertSQL string
	logger    zerolog.Logger
}

// NewPostgresClient connects a pool. When the URL carries no password the
// access key is used as one.
func NewPostgresClient(ctx context.Context, opts Options, logger zerolog.Logger) (*PostgresClient, error) {
	opts = opts.withDefaults()
	cfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.ConnConfig.Password == "" {
		cfg.ConnConfig.Password = opts.Key
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return newPostgresClient(pool, opts, logger), nil
}

// NewPostgresClientFromPool wraps an existing pool. The caller keeps
// ownership of the pool only if it never calls Close.
func NewPostgresClientFromPool(pool *pgxpool.Pool, opts Options, logger zerolog.Logger) *PostgresClient {
	return newPostgresClient(pool, opts.withDefaults(), logger)
}

func newPostgresClient(pool *pgxpool.Pool, opts Options, logger zerolog.Logger) *PostgresClient {
	return &PostgresClient{
		pool:    pool,
		timeout: opts.Timeout,
		listSQL: fmt.Sprintf(`
			SELECT id::text AS id, name, brand, processor, ram, storage, screen_size,
			       image_url, price::float8 AS price, available, created_at
			FROM %s
			ORDER BY brand ASC`, QuoteTable(opts.LaptopTable)),
		insertSQL: fmt.Sprintf(`
			INSERT INTO %s (laptop_model_id, requester_name, requester_email, business_justification)
			VALUES ($1, $2, $3, $4)`, QuoteTable(opts.RequestTable)),
		logger: logger.With().Str("component", "datastore").Str("backend", "postgres").Logger(),
	}
}

// QuoteTable quotes a possibly schema-qualified table name.
func QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// ListLaptops implements Client.
func (c *PostgresClient) ListLaptops(ctx context.Context) ([]models.Laptop, error) {
	const op = "list laptops"
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	rows, err := c.pool.Query(ctx, c.listSQL)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	laptops, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Laptop])
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	if laptops == nil {
		laptops = []models.Laptop{}
	}

	c.logger.Debug().Int("count", len(laptops)).Dur("took", time.Since(start)).Msg("catalog fetched")
	return laptops, nil
}

// CreateRequest implements Client.
func (c *PostgresClient) CreateRequest(ctx context.Context, in models.NewLaptopRequest) error {
	const op = "create request"
	if err := in.Validate(); err != nil {
		return &SubmitError{Op: op, Err: err}
	}
	in = in.Trimmed()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	_, err := c.pool.Exec(ctx, c.insertSQL, in.LaptopModelID, in.RequesterName, in.RequesterEmail, in.BusinessJustification)
	if err != nil {
		serr := &SubmitError{Op: op, Err: err}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			serr.Code = pgErr.Code
		}
		return serr
	}

	c.logger.Debug().Str("laptop_model_id", in.LaptopModelID).Dur("took", time.Since(start)).Msg("request created")
	return nil
}

// Pool exposes the connection pool for the catalog importer.
func (c *PostgresClient) Pool() *pgxpool.Pool {
	return c.pool
}

// Close closes the pool.
func (c *PostgresClient) Close() {
	c.pool.Close()
}
