package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/statpull/statpull/pkg/config"
	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

// Snowflake caps a statement at 16384 bind variables; batches are sized to
// stay under that regardless of column count.
const snowflakeMaxBinds = 16000

// snowflakeSink replaces a Snowflake table with the fetched result over a
// session-scoped connection. Warehouse, database, and schema context is
// selected explicitly before the write: the session default context may
// differ from the configured one, and skipping the USE statements risks
// writing into the wrong schema. The connection is closed on every exit
// path.
type snowflakeSink struct {
	cfg    config.SnowflakeConfig
	table  string
	logger *zap.Logger
}

func (s *snowflakeSink) Write(ctx context.Context, t *table.Table) error {
	dsn, err := sf.DSN(&sf.Config{
		Account:   s.cfg.Account,
		User:      s.cfg.User,
		Password:  s.cfg.Password,
		Warehouse: s.cfg.Warehouse,
		Database:  s.cfg.Database,
		Schema:    s.cfg.Schema,
		Role:      s.cfg.Role,
	})
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "invalid snowflake configuration").
			WithDetail("account", s.cfg.Account)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "failed to open snowflake connection")
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "failed to connect to snowflake").
			WithDetail("account", s.cfg.Account)
	}
	defer conn.Close()

	if err := s.selectContext(ctx, conn); err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.TypeConnection, "failed to begin transaction")
	}
	defer tx.Rollback()

	ident := quoteSnowflakeIdent(s.table)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to drop existing table").
			WithDetail("table", s.table)
	}

	kinds := make([]columnKind, len(t.Columns))
	defs := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		kinds[i] = inferColumnKind(t, column)
		defs[i] = quoteSnowflakeIdent(column) + " " + snowflakeType(kinds[i])
	}

	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to create table").
			WithDetail("table", s.table)
	}

	if err := s.insertRows(ctx, tx, t, kinds); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.TypeWrite, "failed to commit").
			WithDetail("table", s.table)
	}

	s.logger.Debug("snowflake replace complete",
		zap.String("table", s.table),
		zap.Int("rows", t.NumRows()))

	return nil
}

// selectContext pins the session to the configured warehouse, database,
// and schema. These three statements are not optional.
func (s *snowflakeSink) selectContext(ctx context.Context, conn *sql.Conn) error {
	statements := []struct {
		stmt  string
		value string
	}{
		{"USE WAREHOUSE " + quoteSnowflakeIdent(s.cfg.Warehouse), s.cfg.Warehouse},
		{"USE DATABASE " + quoteSnowflakeIdent(s.cfg.Database), s.cfg.Database},
		{"USE SCHEMA " + quoteSnowflakeIdent(s.cfg.Schema), s.cfg.Schema},
	}

	for _, st := range statements {
		if _, err := conn.ExecContext(ctx, st.stmt); err != nil {
			return errors.Wrap(err, errors.TypeContext, "failed to select session context").
				WithDetail("statement", st.stmt)
		}
	}

	return nil
}

func (s *snowflakeSink) insertRows(ctx context.Context, tx *sql.Tx, t *table.Table, kinds []columnKind) error {
	if t.NumRows() == 0 {
		return nil
	}

	columns := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		columns[i] = quoteSnowflakeIdent(column)
	}

	batchRows := snowflakeMaxBinds / len(t.Columns)
	if batchRows < 1 {
		batchRows = 1
	}

	placeholder := "(" + strings.TrimRight(strings.Repeat("?,", len(t.Columns)), ",") + ")"
	ident := quoteSnowflakeIdent(s.table)

	for offset := 0; offset < t.NumRows(); offset += batchRows {
		end := offset + batchRows
		if end > t.NumRows() {
			end = t.NumRows()
		}

		count := end - offset
		placeholders := make([]string, count)
		args := make([]interface{}, 0, count*len(t.Columns))
		for i := 0; i < count; i++ {
			placeholders[i] = placeholder
			for j, column := range t.Columns {
				args = append(args, cellValue(t.Cell(offset+i, column), kinds[j]))
			}
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			ident, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return errors.Wrap(err, errors.TypeWrite, "bulk insert failed").
				WithDetail("table", s.table).
				WithDetail("batch_offset", offset)
		}
	}

	return nil
}

// quoteSnowflakeIdent double-quotes an identifier, escaping embedded
// quotes, so mixed-case and reserved names round-trip.
func quoteSnowflakeIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func snowflakeType(kind columnKind) string {
	switch kind {
	case colBool:
		return "BOOLEAN"
	case colInt:
		return "NUMBER"
	case colFloat:
		return "FLOAT"
	default:
		return "TEXT"
	}
}
