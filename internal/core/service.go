package core

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/trcsocial/shopify-csv-uploader/internal/juno"
	"github.com/trcsocial/shopify-csv-uploader/internal/logging"
)

// Resolver supplies release metadata for a catalog id. It never fails;
// the returned Source records whether the remote catalog or the
// deterministic fallback answered.
type Resolver interface {
	Resolve(ctx context.Context, junoCat string) (juno.Release, juno.Source)
}

// Service runs the export pipeline. It is stateless across requests;
// everything a single export touches is local to that call.
type Service struct {
	resolver Resolver
}

// NewService creates the export service.
func NewService(resolver Resolver) *Service {
	return &Service{resolver: resolver}
}

// ExportResult is the outcome of one export request.
type ExportResult struct {
	ExportID string
	Bundle   []byte

	// Counters for logging and operational visibility.
	RowsIn       int // master rows surviving ingestion
	RemoteRows   int // rows enriched from the remote catalog
	FallbackRows int // rows enriched from the fallback record
}

// Export runs the full pipeline: parse both uploads, resolve metadata
// per row, build the product and research-log rows, and package the
// bundle. Validation failures abort before any row processing, so either
// the whole bundle is produced or none of it.
//
// Rows are processed sequentially; the metadata lookup is the only
// suspension point and is bounded by the resolver's timeout.
func (s *Service) Export(ctx context.Context, masterCSV, templateCSV io.Reader) (*ExportResult, error) {
	exportID := uuid.NewString()
	log := logging.WithFields(ctx, "export_id", exportID)

	masterRows, err := ParseMasterSheet(masterCSV)
	if err != nil {
		return nil, err
	}
	schema, err := ParseTemplate(templateCSV)
	if err != nil {
		return nil, err
	}

	log.Info("export started",
		"rows", len(masterRows),
		"template_columns", len(schema.Headers),
	)

	products := make([]ProductRow, 0, len(masterRows))
	audits := make([]AuditRow, 0, len(masterRows))
	result := &ExportResult{ExportID: exportID, RowsIn: len(masterRows)}

	for _, master := range masterRows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		release, source := s.resolver.Resolve(ctx, master.JunoCat())
		if source == juno.SourceRemote {
			result.RemoteRows++
		} else {
			result.FallbackRows++
		}

		flags := AuditFlags(release)
		products = append(products, BuildProductRow(master, release, schema))
		audits = append(audits, BuildAuditRow(master, release, source, flags))
	}

	bundle, err := BuildBundle(schema, products, audits)
	if err != nil {
		return nil, err
	}
	result.Bundle = bundle

	log.Info("export complete",
		"rows", result.RowsIn,
		"remote", result.RemoteRows,
		"fallback", result.FallbackRows,
		"bundle_bytes", len(bundle),
	)
	return result, nil
}
