// Package config loads runtime configuration from the process environment.
// Values are read once per invocation; per-destination variables are not
// validated upfront, so a missing credential surfaces only when the
// corresponding adapter attempts to connect.
package config

import (
	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is the stats API queried when STATPULL_API_URL is unset.
const DefaultAPIBaseURL = "https://api.collegefootballdata.com"

// APIConfig holds the stats API endpoint and credential.
type APIConfig struct {
	BaseURL string
	Key     string
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// BigQueryConfig holds BigQuery connection parameters. CredentialsPath may
// be empty, in which case application default credentials apply.
type BigQueryConfig struct {
	ProjectID       string
	CredentialsPath string
	Location        string
}

// SnowflakeConfig holds Snowflake session parameters.
type SnowflakeConfig struct {
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Schema    string
	Role      string
}

// Config aggregates everything read from the environment.
type Config struct {
	API       APIConfig
	Postgres  PostgresConfig
	BigQuery  BigQueryConfig
	Snowflake SnowflakeConfig
}

// Load reads configuration from the environment. It never fails: absent
// values stay zero and are caught by whichever adapter needs them.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("STATPULL_API_URL", DefaultAPIBaseURL)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)

	return &Config{
		API: APIConfig{
			BaseURL: v.GetString("STATPULL_API_URL"),
			Key:     v.GetString("STATPULL_API_KEY"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			Database: v.GetString("POSTGRES_DB"),
		},
		BigQuery: BigQueryConfig{
			ProjectID:       v.GetString("BIGQUERY_PROJECT_ID"),
			CredentialsPath: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			Location:        v.GetString("BIGQUERY_LOCATION"),
		},
		Snowflake: SnowflakeConfig{
			Account:   v.GetString("SNOWFLAKE_ACCT"),
			User:      v.GetString("SNOWFLAKE_USER"),
			Password:  v.GetString("SNOWFLAKE_PASS"),
			Warehouse: v.GetString("SNOWFLAKE_WAREHOUSE"),
			Database:  v.GetString("SNOWFLAKE_DB"),
			Schema:    v.GetString("SNOWFLAKE_SCHEMA"),
			Role:      v.GetString("SNOWFLAKE_ROLE"),
		},
	}
}
