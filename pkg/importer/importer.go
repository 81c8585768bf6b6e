// Package importer seeds the laptop catalog table from .xlsx spreadsheets.
// Columns are matched to laptop fields by a YAML mapping; rows are upserted
// by (brand, name).
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"laptop-request-catalog/internal/datastore"
	"laptop-request-catalog/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	Table       string // default "laptop_models"
	MappingPath string // empty uses DefaultMapping
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// maxSamples bounds the error samples kept per sheet
const maxSamples = 10

func (s *SheetSummary) fail(row int, msg string) {
	s.Errors++
	if len(s.Samples) < maxSamples {
		s.Samples = append(s.Samples, RowError{Sheet: s.Name, Row: row, Message: msg})
	}
}

// MappingConfig represents the YAML mapping configuration
type MappingConfig struct {
	Version  int                    `yaml:"version"`
	Defaults map[string]string      `yaml:"defaults"`
	Sheets   map[string]SheetConfig `yaml:"sheets"`
}

// SheetConfig maps the header row of one sheet. The sheet key "*" applies
// to every sheet without its own entry.
type SheetConfig struct {
	Aliases map[string][]string     `yaml:"aliases"`
	Columns map[string]ColumnConfig `yaml:"columns"`
}

// ColumnConfig binds a header to a laptop field. A "?" suffix on Type
// marks the column optional.
type ColumnConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

var laptopFields = map[string]bool{
	"name":        true,
	"brand":       true,
	"processor":   true,
	"ram":         true,
	"storage":     true,
	"screen_size": true,
	"image_url":   true,
	"price":       true,
	"available":   true,
}

// DefaultMapping matches the column headers of the catalog template.
func DefaultMapping() *MappingConfig {
	return &MappingConfig{
		Version:  1,
		Defaults: map[string]string{"available": "yes"},
		Sheets: map[string]SheetConfig{
			"*": {
				Aliases: map[string][]string{
					"Name":        {"Model", "Model Name"},
					"Brand":       {"Manufacturer", "Vendor"},
					"Processor":   {"CPU"},
					"RAM":         {"Memory"},
					"Screen Size": {"Screen", "Display"},
					"Image URL":   {"Image"},
					"Price":       {"Price (USD)", "Cost"},
					"Available":   {"In Stock", "Availability"},
				},
				Columns: map[string]ColumnConfig{
					"Name":        {Field: "name", Type: "TEXT"},
					"Brand":       {Field: "brand", Type: "TEXT"},
					"Processor":   {Field: "processor", Type: "TEXT?"},
					"RAM":         {Field: "ram", Type: "TEXT?"},
					"Storage":     {Field: "storage", Type: "TEXT?"},
					"Screen Size": {Field: "screen_size", Type: "TEXT?"},
					"Image URL":   {Field: "image_url", Type: "URL?"},
					"Price":       {Field: "price", Type: "DECIMAL"},
					"Available":   {Field: "available", Type: "BOOL?"},
				},
			},
		},
	}
}

// LoadMapping reads a mapping file. An empty path returns DefaultMapping.
func LoadMapping(path string) (*MappingConfig, error) {
	if path == "" {
		return DefaultMapping(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping %s: %w", path, err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes and checks a YAML mapping.
func ParseMapping(data []byte) (*MappingConfig, error) {
	var m MappingConfig
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}
	if len(m.Sheets) == 0 {
		return nil, errors.New("mapping defines no sheets")
	}
	for sheet, cfg := range m.Sheets {
		for header, col := range cfg.Columns {
			if !laptopFields[col.Field] {
				return nil, fmt.Errorf("sheet %q column %q: unknown field %q", sheet, header, col.Field)
			}
		}
	}
	for field := range m.Defaults {
		if !laptopFields[field] {
			return nil, fmt.Errorf("defaults: unknown field %q", field)
		}
	}
	return &m, nil
}

func (m *MappingConfig) sheet(name string) (SheetConfig, bool) {
	if cfg, ok := m.Sheets[name]; ok {
		return cfg, true
	}
	cfg, ok := m.Sheets["*"]
	return cfg, ok
}

// Row is one parsed spreadsheet line. Line is 1-based as shown in Excel.
type Row struct {
	Sheet  string
	Line   int
	Laptop models.Laptop
}

// ParseWorkbook reads every mapped sheet of an .xlsx file. Rows that fail
// to parse are counted in the returned summary and left out.
func ParseWorkbook(data []byte, mapping *MappingConfig) ([]Row, ImportSummary, error) {
	summary := ImportSummary{Sheets: []SheetSummary{}}

	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	var rows []Row
	for _, sheet := range xlFile.Sheets {
		cfg, ok := mapping.sheet(sheet.Name)
		if !ok {
			continue // Skip sheets without mapping
		}
		sheetRows, sheetSummary := parseSheet(sheet, cfg, mapping.Defaults)
		rows = append(rows, sheetRows...)
		summary.Sheets = append(summary.Sheets, sheetSummary)
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors
	}
	return rows, summary, nil
}

func parseSheet(sheet *xlsx.Sheet, cfg SheetConfig, defaults map[string]string) ([]Row, SheetSummary) {
	summary := SheetSummary{Name: sheet.Name}
	if sheet.MaxRow == 0 {
		return nil, summary
	}

	headerRow, err := sheet.Row(0)
	if err != nil {
		summary.fail(1, "failed to read header row: "+err.Error())
		return nil, summary
	}
	headers := make(map[string]int)
	for c := 0; c < sheet.MaxCol; c++ {
		name := strings.ToUpper(strings.TrimSpace(headerRow.GetCell(c).String()))
		if name != "" {
			headers[name] = c
		}
	}

	// field -> column index
	columns := make(map[string]int)
	for header, col := range cfg.Columns {
		idx, found := findHeader(headers, header, cfg.Aliases[header])
		if !found {
			if !optional(col.Type) {
				summary.fail(1, fmt.Sprintf("missing required column %q", header))
			}
			continue
		}
		columns[col.Field] = idx
	}
	if summary.Errors > 0 {
		return nil, summary
	}

	var rows []Row
	for r := 1; r < sheet.MaxRow; r++ {
		row, err := sheet.Row(r)
		if err != nil {
			break // No more rows
		}

		values := make(map[string]string, len(columns))
		for field, c := range columns {
			if v := strings.TrimSpace(row.GetCell(c).String()); v != "" {
				values[field] = v
			}
		}
		if len(values) == 0 {
			summary.Skipped++
			continue
		}

		laptop, err := buildLaptop(values, cfg, defaults)
		if err != nil {
			summary.fail(r+1, err.Error())
			continue
		}
		rows = append(rows, Row{Sheet: sheet.Name, Line: r + 1, Laptop: laptop})
	}
	return rows, summary
}

func findHeader(headers map[string]int, header string, aliases []string) (int, bool) {
	for _, candidate := range append([]string{header}, aliases...) {
		if idx, ok := headers[strings.ToUpper(candidate)]; ok {
			return idx, true
		}
	}
	return 0, false
}

func optional(valueType string) bool {
	return strings.HasSuffix(valueType, "?")
}

func buildLaptop(values map[string]string, cfg SheetConfig, defaults map[string]string) (models.Laptop, error) {
	var l models.Laptop
	for header, col := range cfg.Columns {
		value, ok := values[col.Field]
		if !ok {
			value, ok = defaults[col.Field]
		}
		if !ok || value == "" {
			if optional(col.Type) {
				continue
			}
			return l, fmt.Errorf("%s is required", header)
		}

		parsed, err := parseValue(value, col.Type)
		if err != nil {
			return l, fmt.Errorf("failed to parse %s: %v", header, err)
		}
		if err := assign(&l, col.Field, parsed); err != nil {
			return l, fmt.Errorf("%s: %v", header, err)
		}
	}
	if l.Name == "" || l.Brand == "" {
		return l, errors.New("name and brand are required")
	}
	return l, nil
}

func parseValue(value, valueType string) (interface{}, error) {
	valueType = strings.TrimSuffix(valueType, "?") // Remove optional marker

	switch valueType {
	case "TEXT", "string":
		return value, nil
	case "DECIMAL", "decimal":
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", value)
		}
		if f < 0 {
			return nil, fmt.Errorf("must not be negative: %s", value)
		}
		return f, nil
	case "BOOL", "bool":
		switch strings.ToLower(value) {
		case "yes", "y", "true", "1", "available", "in stock":
			return true, nil
		case "no", "n", "false", "0", "unavailable", "out of stock":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean: %s", value)
	case "URL", "url":
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid URL: %s", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

func assign(l *models.Laptop, field string, v interface{}) error {
	switch field {
	case "name", "brand", "processor", "ram", "storage", "screen_size", "image_url":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected text for %s", field)
		}
		switch field {
		case "name":
			l.Name = s
		case "brand":
			l.Brand = s
		case "processor":
			l.Processor = s
		case "ram":
			l.RAM = s
		case "storage":
			l.Storage = s
		case "screen_size":
			l.ScreenSize = s
		case "image_url":
			l.ImageURL = &s
		}
	case "price":
		f, ok := v.(float64)
		if !ok {
			return errors.New("expected a decimal price")
		}
		l.Price = f
	case "available":
		b, ok := v.(bool)
		if !ok {
			return errors.New("expected a boolean")
		}
		l.Available = b
	default:
		return fmt.Errorf("unknown field %s", field)
	}
	return nil
}

// DB begins the transaction the import runs in; *pgxpool.Pool satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ImportExcel processes an Excel file and upserts its rows into the
// catalog table in one transaction. A dry run performs every write and
// rolls back, so the counts are exact.
func ImportExcel(ctx context.Context, db DB, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	if opts.Table == "" {
		opts.Table = "laptop_models"
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return ImportSummary{DryRun: opts.DryRun}, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx.OpenBinary needs the whole file
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportSummary{DryRun: opts.DryRun}, fmt.Errorf("failed to read Excel file: %w", err)
	}

	rows, summary, err := ParseWorkbook(data, mapping)
	summary.DryRun = opts.DryRun
	if err != nil {
		return summary, err
	}
	if summary.Errors > opts.MaxErrors {
		return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	query := upsertQuery(opts.Table)
	sheetIdx := make(map[string]int, len(summary.Sheets))
	for i, s := range summary.Sheets {
		sheetIdx[s.Name] = i
	}

	for _, row := range rows {
		sheet := &summary.Sheets[sheetIdx[row.Sheet]]
		inserted, err := upsert(ctx, tx, query, row.Laptop)
		if err != nil {
			sheet.fail(row.Line, err.Error())
			summary.Errors++
			if summary.Errors > opts.MaxErrors {
				return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
			}
			continue
		}
		if inserted {
			sheet.Inserted++
			summary.Inserted++
		} else {
			sheet.Updated++
			summary.Updated++
		}
	}

	if opts.DryRun {
		return summary, nil
	}
	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("failed to commit import: %w", err)
	}
	return summary, nil
}

func upsertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (name, brand, processor, ram, storage, screen_size, image_url, price, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (brand, name) DO UPDATE SET
			processor = EXCLUDED.processor,
			ram = EXCLUDED.ram,
			storage = EXCLUDED.storage,
			screen_size = EXCLUDED.screen_size,
			image_url = EXCLUDED.image_url,
			price = EXCLUDED.price,
			available = EXCLUDED.available
		RETURNING (xmax = 0) AS inserted`, datastore.QuoteTable(table))
}

// upsert writes one laptop inside a savepoint so a failed row does not
// abort the surrounding transaction.
func upsert(ctx context.Context, tx pgx.Tx, query string, l models.Laptop) (bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return false, err
	}
	var inserted bool
	err = sp.QueryRow(ctx, query,
		l.Name, l.Brand, l.Processor, l.RAM, l.Storage, l.ScreenSize, l.ImageURL, l.Price, l.Available,
	).Scan(&inserted)
	if err != nil {
		sp.Rollback(ctx)
		return false, err
	}
	return inserted, sp.Commit(ctx)
}
