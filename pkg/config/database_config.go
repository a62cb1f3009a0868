package config

// DatabaseMode selects between a single embedded file database and an
// external server-backed database with optional reader/writer separation.
type DatabaseMode string

const (
	DatabaseModeEmbedded DatabaseMode = "embedded"
	DatabaseModeExternal DatabaseMode = "external"
)

// DatabaseConfig is the catalog store's backend configuration. The shape is
// adapted from the teacher's dual-mode DatabaseConfig: embedded SQLite is
// the default (spec.md §6: "a single relational file co-located at
// db_path"), external MySQL/PostgreSQL is available for a more production
// deployment without changing any catalog-store semantics.
type DatabaseConfig struct {
	Mode     DatabaseMode      `yaml:"mode"`
	Type     string            `yaml:"type"` // sqlite, postgresql, mysql
	Embedded *EmbeddedDBConfig `yaml:"embedded,omitempty"`
	External *ExternalDBConfig `yaml:"external,omitempty"`
}

// EmbeddedDBConfig configures the single-file SQLite mode.
type EmbeddedDBConfig struct {
	Path    string `yaml:"path"`
	WALMode bool   `yaml:"wal_mode"`
}

// ExternalDBConfig configures a server-backed MySQL/PostgreSQL deployment
// with optional read replica.
type ExternalDBConfig struct {
	WriterDSN string `yaml:"writer_dsn"`
	ReaderDSN string `yaml:"reader_dsn,omitempty"`

	MaxConnections  int    `yaml:"max_connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// GetDatabaseType returns the SQL dialect for driver registration, defaulting
// to sqlite when unset.
func (c *DatabaseConfig) GetDatabaseType() string {
	if c.Type == "" {
		return "sqlite"
	}
	return c.Type
}
