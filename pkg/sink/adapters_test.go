package sink

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statpull/statpull/pkg/config"
	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

func TestInferColumnKind(t *testing.T) {
	tbl := table.New("TEXT", "BOOL", "INT", "FLOAT", "NULLS", "NULL_THEN_INT")
	tbl.Append(table.Row{
		"TEXT": "Alabama", "BOOL": true,
		"INT": gojson.Number("11"), "FLOAT": gojson.Number("0.5"),
		"NULLS": nil, "NULL_THEN_INT": nil,
	})
	tbl.Append(table.Row{"NULL_THEN_INT": gojson.Number("3")})

	assert.Equal(t, colText, inferColumnKind(tbl, "TEXT"))
	assert.Equal(t, colBool, inferColumnKind(tbl, "BOOL"))
	assert.Equal(t, colInt, inferColumnKind(tbl, "INT"))
	assert.Equal(t, colFloat, inferColumnKind(tbl, "FLOAT"))
	assert.Equal(t, colText, inferColumnKind(tbl, "NULLS"), "all-null columns default to text")
	assert.Equal(t, colInt, inferColumnKind(tbl, "NULL_THEN_INT"), "first non-null cell decides")
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(nil, colText))
	assert.Equal(t, true, cellValue(true, colBool))
	assert.Equal(t, int64(11), cellValue(gojson.Number("11"), colInt))
	assert.Equal(t, 0.5, cellValue(gojson.Number("0.5"), colFloat))
	assert.Equal(t, "Alabama", cellValue("Alabama", colText))

	// A cell that does not fit the inferred kind degrades to text.
	assert.Equal(t, "oops", cellValue("oops", colInt))
}

func TestPostgresTypeMapping(t *testing.T) {
	assert.Equal(t, "BOOLEAN", postgresType(colBool))
	assert.Equal(t, "BIGINT", postgresType(colInt))
	assert.Equal(t, "DOUBLE PRECISION", postgresType(colFloat))
	assert.Equal(t, "TEXT", postgresType(colText))
}

func TestPostgresConnString(t *testing.T) {
	s := &postgresSink{cfg: config.PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "loader",
		Password: "p'ss word",
		Database: "stats",
	}}

	assert.Equal(t,
		`host='db.internal' port=5433 user='loader' password='p\'ss word' dbname='stats'`,
		s.connString())
}

func TestSnowflakeTypeMapping(t *testing.T) {
	assert.Equal(t, "BOOLEAN", snowflakeType(colBool))
	assert.Equal(t, "NUMBER", snowflakeType(colInt))
	assert.Equal(t, "FLOAT", snowflakeType(colFloat))
	assert.Equal(t, "TEXT", snowflakeType(colText))
}

func TestQuoteSnowflakeIdent(t *testing.T) {
	assert.Equal(t, `"GAMES"`, quoteSnowflakeIdent("GAMES"))
	assert.Equal(t, `"WEIRD""NAME"`, quoteSnowflakeIdent(`WEIRD"NAME`))
}

func TestSplitTableName(t *testing.T) {
	dataset, tableID, err := splitTableName("stats.games")
	require.NoError(t, err)
	assert.Equal(t, "stats", dataset)
	assert.Equal(t, "games", tableID)

	for _, bad := range []string{"games", "a.b.c", ".games", "stats.", ""} {
		_, _, err := splitTableName(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.IsType(err, errors.TypeValidation))
	}
}
