// Package core implements the master-sheet enrichment pipeline: parsing
// the uploaded CSVs, resolving release metadata per row, building Shopify
// product rows and research-log rows, and packaging both into the export
// bundle. This package has no HTTP dependencies and can be driven by any
// frontend.
package core

// MasterRow is a single release listing from the master sheet, keyed by
// lowercased header name. One MasterRow yields exactly one product row
// and one research-log row.
type MasterRow map[string]string

// JunoCat returns the row's catalog identifier.
func (m MasterRow) JunoCat() string {
	return m["juno_cat"]
}

// TemplateSchema is the output schema derived from the uploaded Shopify
// template: the ordered header row plus per-column defaults taken from
// the template's first non-blank data row. Defaults always has exactly
// one entry per header. Immutable once parsed.
type TemplateSchema struct {
	Headers  []string
	Defaults map[string]string
}

// ProductRow maps every template header to its output value. The key set
// is exactly the template's headers.
type ProductRow map[string]string

// AuditRow is one research-log entry recording provenance and
// data-quality flags for a processed master row.
type AuditRow struct {
	JunoCat    string
	Source     string
	Confidence string
	Flags      string
	Artist     string
	Title      string
	Notes      string
}

// AuditHeaders is the fixed research-log column order.
var AuditHeaders = []string{"juno_cat", "source", "confidence", "flags", "artist", "title", "notes"}

// masterRequiredColumns are the columns the master sheet must carry.
var masterRequiredColumns = []string{"juno_cat", "price_inr", "tier", "condition", "inventory_qty"}

// Bundle entry and download names.
const (
	ProductsEntryName    = "shopify_products.csv"
	ResearchLogEntryName = "research_log.csv"
	BundleFilename       = "shopify_export_bundle.zip"
)
