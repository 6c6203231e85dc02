package core

// rowbuild.go constructs the Shopify product row and the research-log
// row for a single master-sheet entry. All builders are pure functions
// over the parsed inputs.

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/trcsocial/shopify-csv-uploader/internal/juno"
)

// Slugify lowercases value and replaces every non-alphanumeric character
// with '-', collapsing runs and trimming the ends. Idempotent.
func Slugify(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	lastDash := true // swallow leading separators
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// BuildDescription renders the product's Body (HTML) fragment: a summary
// sentence, the edition notes, and the tracklist in a preformatted block.
// Tracks without a title are skipped; tracks without a position render as
// the bare title.
func BuildDescription(release juno.Release, notes string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%s — %s",
		strings.TrimSpace(release.Artist), strings.TrimSpace(release.Title)))
	if release.Label != "" {
		parts = append(parts, release.Label)
	}
	if facts := joinNonEmpty(" | ", release.Genre, release.Style, release.ReleaseDate); facts != "" {
		parts = append(parts, facts)
	}
	summary := strings.Join(parts, ". ")

	var trackLines []string
	for _, track := range release.Tracks {
		position := strings.TrimSpace(track.Position)
		name := strings.TrimSpace(track.Title)
		if name == "" {
			continue
		}
		if position != "" {
			trackLines = append(trackLines, position+": "+name)
		} else {
			trackLines = append(trackLines, name)
		}
	}

	return fmt.Sprintf("<p>%s</p>\n<p>%s</p>\n<p>Tracklist:</p>\n<pre>%s</pre>",
		summary, notes, strings.Join(trackLines, "\n"))
}

// fixedFieldDefaults are pipeline defaults applied only when the
// template's own default for the column is empty; a template author's
// explicit value always wins. Other fields (Handle, Title, Vendor, Type,
// Tags, the variant identifiers) are overwritten unconditionally — the
// asymmetry is deliberate and load-bearing for existing templates.
var fixedFieldDefaults = []struct {
	column string
	value  string
}{
	{"Published", "TRUE"},
	{"Option1 Name", "Title"},
	{"Option1 Value", "Default Title"},
	{"Variant Inventory Tracker", "shopify"},
	{"Variant Inventory Policy", "deny"},
	{"Variant Fulfillment Service", "manual"},
	{"Variant Requires Shipping", "TRUE"},
	{"Variant Taxable", "TRUE"},
}

// BuildProductRow combines a master row, resolved release metadata, and
// the template schema into one output row. The result's key set is
// exactly schema.Headers; columns the pipeline doesn't touch keep their
// template defaults.
func BuildProductRow(master MasterRow, release juno.Release, schema TemplateSchema) ProductRow {
	row := make(map[string]string, len(schema.Headers)+8)
	for col, val := range schema.Defaults {
		row[col] = val
	}

	junoCat := master.JunoCat()

	row["Handle"] = Slugify(release.Artist + "-" + release.Title + "-" + junoCat)
	row["Title"] = release.Artist + " - " + release.Title
	row["Body (HTML)"] = BuildDescription(release, master["edition_notes"])

	vendor := release.Label
	if vendor == "" {
		vendor = "Juno"
	}
	row["Vendor"] = vendor

	productType := master["format_override"]
	if productType == "" {
		productType = release.Format
	}
	row["Type"] = productType

	tags := []string{
		release.Genre,
		release.Style,
		master["condition"],
		"tier:" + master["tier"],
	}
	if master["edition_notes"] != "" {
		tags = append(tags, master["edition_notes"])
	}
	row["Tags"] = joinNonEmpty(", ", tags...)

	for _, fixed := range fixedFieldDefaults {
		if row[fixed.column] == "" {
			row[fixed.column] = fixed.value
		}
	}

	row["Variant SKU"] = junoCat
	row["Variant Price"] = master["price_inr"]
	row["Variant Inventory Qty"] = master["inventory_qty"]
	row["Image Src"] = release.Image
	if master["ean"] != "" {
		row["Variant Barcode"] = master["ean"]
	}

	// Restrict to the template's exact column set; anything set above
	// that isn't a recognized header is discarded.
	cleaned := make(ProductRow, len(schema.Headers))
	for _, header := range schema.Headers {
		cleaned[header] = row[header]
	}
	return cleaned
}

// AuditFlags derives the data-quality flags for a resolved release.
func AuditFlags(release juno.Release) []string {
	var flags []string
	if release.Image == "" {
		flags = append(flags, "missing-image")
	}
	if len(release.Tracks) == 0 {
		flags = append(flags, "missing-tracklist")
	}
	return flags
}

// BuildAuditRow derives the research-log entry for a processed row.
// source identifies the metadata provider that supplied the release.
func BuildAuditRow(master MasterRow, release juno.Release, source juno.Source, flags []string) AuditRow {
	confidence := "low"
	if release.JunoCat != "" || release.Artist != "" || release.Title != "" {
		confidence = "high"
	}

	return AuditRow{
		JunoCat:    master.JunoCat(),
		Source:     string(source),
		Confidence: confidence,
		Flags:      strings.Join(flags, ";"),
		Artist:     release.Artist,
		Title:      release.Title,
		Notes:      master["edition_notes"],
	}
}

// joinNonEmpty joins the non-empty values with sep.
func joinNonEmpty(sep string, values ...string) string {
	var kept []string
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}
