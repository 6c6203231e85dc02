// Package templates contains the templ components for the export UI.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// IndexPage renders the upload form. The form posts both CSVs to
// /enrich via static/app.js and triggers the bundle download on success.
// Error feedback is rendered client-side from the JSON error body.
func IndexPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, indexHTML)
		return err
	})
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <title>Juno to Shopify CSV</title>
    <link rel="stylesheet" href="/static/styles.css" />
</head>
<body>
    <div class="card">
        <h1>Juno Master Sheet &#10140; Shopify</h1>
        <p>Upload the Juno master sheet CSV and a Shopify export template.
        You will receive a ZIP with the Shopify import CSV and a research log.</p>
        <form id="upload-form">
            <label>Master CSV <input type="file" name="master_csv" accept=".csv" required /></label>
            <label>Shopify Template CSV <input type="file" name="template_csv" accept=".csv" required /></label>
            <button type="submit">Generate CSVs</button>
        </form>
        <div id="status"></div>
    </div>
    <script src="/static/app.js"></script>
</body>
</html>
`
