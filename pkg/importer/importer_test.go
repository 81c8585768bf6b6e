package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

// workbook builds an .xlsx file with one sheet holding rows.
func workbook(t *testing.T, sheet string, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sh, err := f.AddSheet(sheet)
	require.NoError(t, err)
	for _, cells := range rows {
		row := sh.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseWorkbook_DefaultMapping(t *testing.T) {
	data := workbook(t, "Laptops", [][]string{
		{"Model", "Manufacturer", "CPU", "Memory", "Storage", "Screen", "Price (USD)", "In Stock"},
		{"ThinkPad X1", "Lenovo", "i7", "16GB", "512GB", "14\"", "$1,899", "yes"},
		{"", "", "", "", "", "", "", ""},
		{"MacBook Air", "Apple", "M3", "8GB", "256GB", "13.6\"", "1099.50", "no"},
		{"XPS 13", "Dell", "i5", "8GB", "256GB", "13.4\"", "cheap", "yes"},
		{"Spectre", "HP", "i7", "16GB", "1TB", "14\"", "1499", ""},
	})

	rows, summary, err := ParseWorkbook(data, DefaultMapping())
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "ThinkPad X1", rows[0].Laptop.Name)
	assert.Equal(t, "Lenovo", rows[0].Laptop.Brand)
	assert.Equal(t, 1899.0, rows[0].Laptop.Price)
	assert.True(t, rows[0].Laptop.Available)
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, 1099.5, rows[1].Laptop.Price)
	assert.False(t, rows[1].Laptop.Available)

	// Availability falls back to the mapping default.
	assert.Equal(t, "Spectre", rows[2].Laptop.Name)
	assert.True(t, rows[2].Laptop.Available)

	require.Len(t, summary.Sheets, 1)
	sheet := summary.Sheets[0]
	assert.Equal(t, "Laptops", sheet.Name)
	assert.Equal(t, 1, sheet.Skipped)
	assert.Equal(t, 1, sheet.Errors)
	require.Len(t, sheet.Samples, 1)
	assert.Equal(t, 5, sheet.Samples[0].Row)
	assert.Contains(t, sheet.Samples[0].Message, "Price")
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Skipped)
}

func TestParseWorkbook_MissingRequiredColumn(t *testing.T) {
	data := workbook(t, "Laptops", [][]string{
		{"Name", "Brand"},
		{"ThinkPad X1", "Lenovo"},
	})

	rows, summary, err := ParseWorkbook(data, DefaultMapping())
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.Len(t, summary.Sheets, 1)
	assert.Equal(t, 1, summary.Errors)
	assert.Contains(t, summary.Sheets[0].Samples[0].Message, `missing required column "Price"`)
}

func TestParseWorkbook_RejectsBadValues(t *testing.T) {
	data := workbook(t, "Laptops", [][]string{
		{"Name", "Brand", "Price", "Image URL", "Available"},
		{"A", "Acme", "-5", "", ""},
		{"B", "Acme", "10", "not a url", ""},
		{"C", "Acme", "10", "", "maybe"},
		{"", "Acme", "10", "", ""},
		{"E", "Acme", "10", "https://cdn.example.com/e.png", ""},
	})

	rows, summary, err := ParseWorkbook(data, DefaultMapping())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Laptop.ImageURL)
	assert.Equal(t, "https://cdn.example.com/e.png", *rows[0].Laptop.ImageURL)
	assert.Equal(t, 4, summary.Errors)
}

func TestParseWorkbook_SkipsUnmappedSheets(t *testing.T) {
	mapping, err := ParseMapping([]byte(`
version: 1
sheets:
  Catalog:
    columns:
      Name: {field: name, type: TEXT}
      Brand: {field: brand, type: TEXT}
      Price: {field: price, type: DECIMAL}
`))
	require.NoError(t, err)

	data := workbook(t, "Notes", [][]string{{"Name", "Brand", "Price"}, {"X", "Y", "1"}})
	rows, summary, err := ParseWorkbook(data, mapping)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, summary.Sheets)
}

func TestParseWorkbook_NotAnExcelFile(t *testing.T) {
	_, _, err := ParseWorkbook([]byte("name,brand\n"), DefaultMapping())
	assert.Error(t, err)
}

func TestParseMapping(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no sheets",
			yaml:    "version: 1\n",
			wantErr: "no sheets",
		},
		{
			name: "unknown field",
			yaml: `
sheets:
  "*":
    columns:
      Colour: {field: color, type: TEXT}
`,
			wantErr: `unknown field "color"`,
		},
		{
			name: "unknown default",
			yaml: `
defaults: {warranty: "3y"}
sheets:
  "*":
    columns:
      Name: {field: name, type: TEXT}
`,
			wantErr: `unknown field "warranty"`,
		},
		{
			name:    "malformed",
			yaml:    "sheets: [",
			wantErr: "failed to parse mapping",
		},
		{
			name: "valid",
			yaml: `
version: 1
defaults: {available: "yes"}
sheets:
  "*":
    aliases:
      Name: [Model]
    columns:
      Name: {field: name, type: TEXT}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMapping([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"Model"}, m.Sheets["*"].Aliases["Name"])
		})
	}
}

func TestLoadMapping(t *testing.T) {
	m, err := LoadMapping("")
	require.NoError(t, err)
	assert.Contains(t, m.Sheets, "*")

	_, err = LoadMapping("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadMapping_ShippedConfigMatchesDefault(t *testing.T) {
	m, err := LoadMapping("../../configs/mapping/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultMapping(), m)
}

func TestUpsertQueryQuotesTable(t *testing.T) {
	q := upsertQuery("catalog.laptop_models")
	assert.Contains(t, q, `INSERT INTO "catalog"."laptop_models"`)
	assert.Contains(t, q, "ON CONFLICT (brand, name)")
}
