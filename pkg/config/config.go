// Package config loads the store's server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the distribution/session core.
// Field names follow the enumeration in the project specification: two
// listener ports, the game-server port range, storage roots, and the
// transfer/session tuning knobs shared by the lobby and developer services.
type Config struct {
	LobbyHost            string `yaml:"lobby_host"`
	LobbyPort            int    `yaml:"lobby_port"`
	DeveloperPort        int    `yaml:"developer_port"`
	GameServerStartPort  int    `yaml:"game_server_start_port"`
	GameServerInterpreter string `yaml:"game_server_interpreter"`

	DBPath      string `yaml:"db_path"`
	GamesDir    string `yaml:"games_dir"`
	TempDir     string `yaml:"temp_dir"`
	PluginsDir  string `yaml:"plugins_dir"`

	PasswordSalt   string `yaml:"password_salt"`
	JWTSecret      string `yaml:"jwt_secret"`
	ChunkSize      int    `yaml:"chunk_size"`
	MaxFileSize    int64  `yaml:"max_file_size"`
	SessionTimeout string `yaml:"session_timeout"`

	Database *DatabaseConfig `yaml:"database"`
	Logging  *LoggingConfig  `yaml:"logging"`
	Metrics  *MetricsConfig  `yaml:"metrics"`
	Admin    *AdminConfig    `yaml:"admin"`
}

// LoggingConfig mirrors pkg/logging.Config so the YAML schema and the
// logger constructor stay in lockstep without an import cycle.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	File   *struct {
		Directory string `yaml:"directory"`
		Filename  string `yaml:"filename"`
		MaxSize   string `yaml:"max_size"`
		MaxFiles  int    `yaml:"max_files"`
		MaxAge    string `yaml:"max_age"`
		Compress  bool   `yaml:"compress"`
	} `yaml:"file,omitempty"`
}

// MetricsConfig controls the Prometheus HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// AdminConfig controls the optional internal gRPC admin surface over the
// game supervisor. Disabled (GRPCPort == 0) unless configured.
type AdminConfig struct {
	GRPCPort int `yaml:"grpc_port"`
}

// Load reads and parses a YAML configuration file, expanding environment
// variable references ($FOO, ${FOO}) before unmarshalling.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration populated with the spec's documented
// defaults, suitable for local development with no config file at all.
func Default() *Config {
	return &Config{
		LobbyHost:             "0.0.0.0",
		LobbyPort:             8888,
		DeveloperPort:         8889,
		GameServerStartPort:   9000,
		GameServerInterpreter: "python3",
		DBPath:                "./data/gamestore.db",
		GamesDir:              "./data/games",
		TempDir:               "./data/temp",
		PluginsDir:            "./data/plugins",
		PasswordSalt:          "game-store-salt-2024",
		JWTSecret:             "change-me-in-production",
		ChunkSize:             8192,
		MaxFileSize:           100 * 1024 * 1024,
		SessionTimeout:        "1h",
		Database: &DatabaseConfig{
			Mode: DatabaseModeEmbedded,
			Type: "sqlite",
			Embedded: &EmbeddedDBConfig{
				Path:    "./data/gamestore.db",
				WALMode: true,
			},
		},
		Logging: &LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Metrics: &MetricsConfig{
			Enabled: true,
			Port:    9100,
		},
		Admin: &AdminConfig{
			GRPCPort: 0,
		},
	}
}

// SessionTimeoutDuration parses SessionTimeout, falling back to one hour.
func (c *Config) SessionTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.SessionTimeout); err == nil {
		return d
	}
	return time.Hour
}

// PortProbeRange is how many successive ports the server tries when a
// preferred listener port is already bound (spec.md §6: "probes the next
// N=10 ports").
const PortProbeRange = 10
