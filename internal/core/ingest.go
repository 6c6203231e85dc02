package core

// ingest.go parses the two uploaded CSVs. Both are decoded as UTF-8 with
// an optional leading BOM and cleaned of common spreadsheet artifacts.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseMasterSheet parses the master sheet into one MasterRow per
// release. Keys are lowercased, cleaned header names, so column matching
// is case-insensitive: a sheet headed "Juno_Cat" satisfies the juno_cat
// requirement.
//
// It returns a *ValidationError naming every missing required column
// (sorted) when the header row is incomplete. Rows with an empty
// juno_cat are silently dropped; rows without an inventory_qty value
// get "1".
func ParseMasterSheet(r io.Reader) ([]MasterRow, error) {
	reader := csv.NewReader(WrapReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		// No header row at all: every required column is missing.
		return nil, newMissingColumnsError(masterRequiredColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read master header: %w", err)
	}

	keys := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		keys[i] = key
		present[key] = true
	}

	var missing []string
	for _, col := range masterRequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, newMissingColumnsError(missing)
	}

	var rows []MasterRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read master row: %w", err)
		}

		row := make(MasterRow, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			if i < len(record) {
				row[key] = CleanCell(record[i])
			} else {
				row[key] = ""
			}
		}

		if row.JunoCat() == "" {
			continue
		}
		if row["inventory_qty"] == "" {
			row["inventory_qty"] = "1"
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ParseTemplate derives the output schema from the Shopify template:
// the header row defines the columns, and the first data row containing
// any non-whitespace cell supplies per-column defaults. A template with
// a header but no data rows yields all-empty defaults.
//
// Returns a *ValidationError when the file has no header row.
func ParseTemplate(r io.Reader) (TemplateSchema, error) {
	reader := csv.NewReader(WrapReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return TemplateSchema{}, errEmptyTemplate()
	}
	if err != nil {
		return TemplateSchema{}, fmt.Errorf("read template header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = CleanCell(h)
	}

	defaults := make(map[string]string, len(headers))
	for _, h := range headers {
		defaults[h] = ""
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return TemplateSchema{}, fmt.Errorf("read template row: %w", err)
		}

		if !rowHasContent(record) {
			continue
		}
		for i, h := range headers {
			if i < len(record) {
				defaults[h] = record[i]
			} else {
				defaults[h] = ""
			}
		}
		break
	}

	return TemplateSchema{Headers: headers, Defaults: defaults}, nil
}

// rowHasContent reports whether any cell contains non-whitespace.
func rowHasContent(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="..."), and stray
// wrapping quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
