package sink

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

// CSVPath derives the output file name from a base name: <basename>.csv,
// or <basename>.csv.gz when compression is on.
func CSVPath(basename string, compress bool) string {
	path := basename + ".csv"
	if compress {
		path += ".gz"
	}
	return path
}

// csvSink writes the table as comma-separated text: one header row of
// uppercase column names, one line per row, no index column. An existing
// file at the path is overwritten entirely.
type csvSink struct {
	path     string
	compress bool
	logger   *zap.Logger
}

func (s *csvSink) Write(ctx context.Context, t *table.Table) error {
	f, err := os.Create(s.path)
	if err != nil {
		return errors.Wrap(err, errors.TypeFilesystem, "failed to create output file").
			WithDetail("path", s.path)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if s.compress {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := encodeCSV(w, t); err != nil {
		return errors.Wrap(err, errors.TypeFilesystem, "failed to write csv").
			WithDetail("path", s.path)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, errors.TypeFilesystem, "failed to finish gzip stream").
				WithDetail("path", s.path)
		}
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.TypeFilesystem, "failed to close output file").
			WithDetail("path", s.path)
	}

	return nil
}

// encodeCSV renders the table to w. Shared with the BigQuery adapter,
// which stages the table as CSV for its bulk load.
func encodeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	row := make([]string, len(t.Columns))
	for i := range t.Rows {
		for j, column := range t.Columns {
			row[j] = t.CellString(i, column)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
