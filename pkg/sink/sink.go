// Package sink routes a fetched table to exactly one destination: a local
// CSV file, PostgreSQL, BigQuery, or Snowflake. Every adapter has replace
// semantics: the write fully overwrites any pre-existing file or table.
// No adapter appends or merges.
package sink

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/statpull/statpull/pkg/config"
	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

// Kind tags the active destination variant.
type Kind string

const (
	KindCSV       Kind = "csv"
	KindPostgres  Kind = "postgres"
	KindBigQuery  Kind = "bigquery"
	KindSnowflake Kind = "snowflake"
)

// ParseKind converts a destination name from the CLI into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCSV, KindPostgres, KindBigQuery, KindSnowflake:
		return Kind(s), nil
	default:
		return "", errors.Newf(errors.TypeValidation, "unknown destination %q", s).
			WithDetail("supported", []string{"csv", "postgres", "bigquery", "snowflake"})
	}
}

// Destination is a tagged union over the supported write targets. Exactly
// one variant, selected by Kind, is active per invocation. Connection
// parameters are carried by value and held only for the duration of the
// write.
type Destination struct {
	Kind Kind

	// CSV variant.
	Path     string
	Compress bool

	// Database variants.
	Table     string
	Postgres  config.PostgresConfig
	BigQuery  config.BigQueryConfig
	Snowflake config.SnowflakeConfig
}

// Validate checks the destination shape once, at the dispatcher boundary,
// before any connection is attempted. A database destination without a
// table name is rejected here rather than silently defaulting.
func (d Destination) Validate() error {
	switch d.Kind {
	case KindCSV:
		if d.Path == "" {
			return errors.New(errors.TypeValidation, "csv destination requires an output path")
		}
	case KindPostgres, KindBigQuery, KindSnowflake:
		if d.Table == "" {
			return errors.Newf(errors.TypeValidation, "%s destination requires a table name", d.Kind)
		}
	default:
		return errors.Newf(errors.TypeValidation, "unknown destination %q", string(d.Kind))
	}
	return nil
}

// writer is the contract each adapter implements: one shot, no retries.
type writer interface {
	Write(ctx context.Context, t *table.Table) error
}

// Write validates the destination, selects the matching adapter, and
// invokes it exactly once. The adapter's outcome is propagated unchanged.
func Write(ctx context.Context, t *table.Table, dest Destination, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := dest.Validate(); err != nil {
		return err
	}

	var w writer
	switch dest.Kind {
	case KindCSV:
		w = &csvSink{path: dest.Path, compress: dest.Compress, logger: logger}
	case KindPostgres:
		w = &postgresSink{cfg: dest.Postgres, table: dest.Table, logger: logger}
	case KindBigQuery:
		w = &bigQuerySink{cfg: dest.BigQuery, table: dest.Table, logger: logger}
	case KindSnowflake:
		w = &snowflakeSink{cfg: dest.Snowflake, table: dest.Table, logger: logger}
	}

	start := time.Now()
	logger.Info("writing table",
		zap.String("destination", string(dest.Kind)),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", len(t.Columns)))

	if err := w.Write(ctx, t); err != nil {
		return err
	}

	logger.Info("write complete",
		zap.String("destination", string(dest.Kind)),
		zap.Int("rows", t.NumRows()),
		zap.Duration("duration", time.Since(start)))

	return nil
}
