package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType   `json:"type"`
	SQLite   SQLiteConfig   `json:"sqlite"`
	Postgres PostgresConfig `json:"postgres"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `json:"path"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"-"`
	SSLMode  string `json:"sslMode"`
	TimeZone string `json:"timeZone"`
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypePostgreSQL:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			c.Postgres.Host,
			c.Postgres.Username,
			c.Postgres.Password,
			c.Postgres.Database,
			c.Postgres.Port,
			c.Postgres.SSLMode,
			c.Postgres.TimeZone,
		)
	default:
		return c.SQLite.Path + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"
	}
}

// GetDatabaseConfig builds the database configuration from NEWS_DB_* variables.
func GetDatabaseConfig() *DatabaseConfig {
	c := GetDefaultDatabaseConfig()
	if DatabaseType(os.Getenv("NEWS_DB_TYPE")) == DatabaseTypePostgreSQL {
		c.Type = DatabaseTypePostgreSQL
	}
	if v := os.Getenv("NEWS_DB_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("NEWS_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			port = -1
		}
		c.Postgres.Port = port
	}
	if v := os.Getenv("NEWS_DB_NAME"); v != "" {
		c.Postgres.Database = v
	}
	if v := os.Getenv("NEWS_DB_USER"); v != "" {
		c.Postgres.Username = v
	}
	c.Postgres.Password = os.Getenv("NEWS_DB_PASSWORD")
	if v := os.Getenv("NEWS_DB_SSLMODE"); v != "" {
		c.Postgres.SSLMode = v
	}
	return c
}

// GetDefaultDatabaseConfig returns default database configuration
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: GetDBPath(),
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "ya_news",
			Username: "ya_news",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
	}
}

// NewSQLiteConfig returns a configuration for the SQLite file at path.
func NewSQLiteConfig(path string) *DatabaseConfig {
	c := GetDefaultDatabaseConfig()
	c.SQLite.Path = path
	return c
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.Postgres.Host == "" {
			return fmt.Errorf("PostgreSQL host cannot be empty")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("PostgreSQL database name cannot be empty")
		}
		if c.Postgres.Username == "" {
			return fmt.Errorf("PostgreSQL username cannot be empty")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			return fmt.Errorf("PostgreSQL port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

func (c *DatabaseConfig) IsPostgreSQL() bool {
	return c.Type == DatabaseTypePostgreSQL
}

func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
