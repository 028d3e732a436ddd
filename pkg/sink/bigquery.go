package sink

import (
	"bytes"
	"context"
	"strings"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/statpull/statpull/pkg/config"
	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

// bigQuerySink replaces a dataset-qualified BigQuery table with the fetched
// result. The table is staged as in-memory CSV and loaded with a load job
// using WriteTruncate, so a pre-existing table is fully overwritten.
type bigQuerySink struct {
	cfg    config.BigQueryConfig
	table  string // dataset.table
	logger *zap.Logger
}

func (s *bigQuerySink) Write(ctx context.Context, t *table.Table) error {
	datasetID, tableID, err := splitTableName(s.table)
	if err != nil {
		return err
	}

	var opts []option.ClientOption
	if s.cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(s.cfg.CredentialsPath))
	}

	client, err := bigquery.NewClient(ctx, s.cfg.ProjectID, opts...)
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "failed to create bigquery client").
			WithDetail("project_id", s.cfg.ProjectID)
	}
	defer client.Close()

	var buf bytes.Buffer
	if err := encodeCSV(&buf, t); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to stage table as csv")
	}

	source := bigquery.NewReaderSource(&buf)
	source.SourceFormat = bigquery.CSV
	source.SkipLeadingRows = 1
	source.AutoDetect = true

	loader := client.Dataset(datasetID).Table(tableID).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteTruncate
	loader.CreateDisposition = bigquery.CreateIfNeeded
	if s.cfg.Location != "" {
		loader.Location = s.cfg.Location
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to start load job").
			WithDetail("table", s.table)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrap(err, errors.TypeWrite, "load job failed").
			WithDetail("table", s.table)
	}
	if err := status.Err(); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "load job completed with errors").
			WithDetail("table", s.table)
	}

	s.logger.Debug("bigquery replace complete",
		zap.String("table", s.table),
		zap.Int("rows", t.NumRows()))

	return nil
}

// splitTableName parses the dataset-qualified form "dataset.table".
func splitTableName(name string) (dataset, tableID string, err error) {
	parts := strings.Split(name, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Newf(errors.TypeValidation,
			"bigquery table must be dataset-qualified as dataset.table, got %q", name)
	}
	return parts[0], parts[1], nil
}
