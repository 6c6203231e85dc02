package core

// bundle.go serializes the result row sets to CSV and packages them into
// the export zip.

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
)

// MarshalProductRows serializes product rows to CSV bytes using headers
// as the exact column order. The header row is always written, so zero
// rows still produce a valid header-only CSV.
func MarshalProductRows(headers []string, rows []ProductRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write product header: %w", err)
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write product row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush product csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalAuditRows serializes research-log rows to CSV bytes in the
// fixed AuditHeaders order.
func MarshalAuditRows(rows []AuditRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(AuditHeaders); err != nil {
		return nil, fmt.Errorf("write audit header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.JunoCat,
			row.Source,
			row.Confidence,
			row.Flags,
			row.Artist,
			row.Title,
			row.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write audit row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush audit csv: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildBundle packages both CSVs into a single deflate-compressed zip
// with exactly two entries, regardless of row count.
func BuildBundle(schema TemplateSchema, products []ProductRow, audits []AuditRow) ([]byte, error) {
	productCSV, err := MarshalProductRows(schema.Headers, products)
	if err != nil {
		return nil, err
	}
	auditCSV, err := MarshalAuditRows(audits)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data []byte
	}{
		{ProductsEntryName, productCSV},
		{ResearchLogEntryName, auditCSV},
	}
	for _, entry := range entries {
		f, err := zw.Create(entry.name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", entry.name, err)
		}
		if _, err := f.Write(entry.data); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
