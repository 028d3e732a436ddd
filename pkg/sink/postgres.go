package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/statpull/statpull/pkg/config"
	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

// postgresSink replaces a PostgreSQL table with the fetched result: drop,
// create from inferred column types, then bulk load with COPY, all inside
// one transaction.
type postgresSink struct {
	cfg    config.PostgresConfig
	table  string
	logger *zap.Logger
}

func (s *postgresSink) Write(ctx context.Context, t *table.Table) error {
	conn, err := pgx.Connect(ctx, s.connString())
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "failed to connect to postgres").
			WithDetail("host", s.cfg.Host).
			WithDetail("database", s.cfg.Database)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{s.table}.Sanitize()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to drop existing table").
			WithDetail("table", s.table)
	}

	kinds := make([]columnKind, len(t.Columns))
	defs := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		kinds[i] = inferColumnKind(t, column)
		defs[i] = pgx.Identifier{column}.Sanitize() + " " + postgresType(kinds[i])
	}

	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
	if _, err := tx.Exec(ctx, createStmt); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to create table").
			WithDetail("table", s.table)
	}

	rows := make([][]interface{}, t.NumRows())
	for i := range t.Rows {
		row := make([]interface{}, len(t.Columns))
		for j, column := range t.Columns {
			row[j] = cellValue(t.Cell(i, column), kinds[j])
		}
		rows[i] = row
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{s.table}, t.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return errors.Wrap(err, errors.TypeWrite, "bulk copy failed").
			WithDetail("table", s.table)
	}
	if copied != int64(t.NumRows()) {
		return errors.Newf(errors.TypeWrite, "copied %d of %d rows", copied, t.NumRows()).
			WithDetail("table", s.table)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to commit").
			WithDetail("table", s.table)
	}

	s.logger.Debug("postgres replace complete",
		zap.String("table", s.table),
		zap.Int64("rows", copied))

	return nil
}

func (s *postgresSink) connString() string {
	parts := []string{
		"host=" + quoteConnValue(s.cfg.Host),
		fmt.Sprintf("port=%d", s.cfg.Port),
		"user=" + quoteConnValue(s.cfg.User),
		"password=" + quoteConnValue(s.cfg.Password),
		"dbname=" + quoteConnValue(s.cfg.Database),
	}
	return strings.Join(parts, " ")
}

// quoteConnValue quotes a libpq keyword/value parameter so spaces and
// quotes in credentials survive.
func quoteConnValue(v string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + escaped + "'"
}

func postgresType(kind columnKind) string {
	switch kind {
	case colBool:
		return "BOOLEAN"
	case colInt:
		return "BIGINT"
	case colFloat:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}
