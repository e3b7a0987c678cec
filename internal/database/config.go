package database

import (
	"fmt"
	"strings"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver specifies the database driver (postgres, sqlite)
	Driver string

	// PostgreSQL-specific configuration
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// SQLite-specific configuration
	Path string

	// MaxRetries bounds the connection attempts made by InitDatabase
	MaxRetries int
}

// String returns a string representation with sensitive data masked
func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Driver, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// DSN builds a Data Source Name string based on the driver.
// SQLite paths always get foreign key enforcement, a busy timeout and
// immediate transactions: the repository relies on the first for
// pizza_ingredients, the other two let concurrent writers queue for the
// write lock instead of failing with "database is locked".
func (c *DatabaseConfig) DSN() string {
	switch strings.ToLower(c.Driver) {
	case "postgres", "postgresql":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case "sqlite", "":
		return sqliteDSN(c.Path)
	default:
		return ""
	}
}

// sqliteOptions are appended unless the path already sets the option
// under its name or its alias
var sqliteOptions = []struct {
	names []string
	value string
}{
	{names: []string{"_foreign_keys", "_fk"}, value: "_foreign_keys=on"},
	{names: []string{"_busy_timeout", "_timeout"}, value: "_busy_timeout=5000"},
	{names: []string{"_txlock"}, value: "_txlock=immediate"},
}

func sqliteDSN(path string) string {
	dsn := path
	for _, option := range sqliteOptions {
		if hasOption(path, option.names) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + option.value
		} else {
			dsn += "?" + option.value
		}
	}
	return dsn
}

func hasOption(path string, names []string) bool {
	for _, name := range names {
		if strings.Contains(path, name+"=") {
			return true
		}
	}
	return false
}
