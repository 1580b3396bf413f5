package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileName is the file Load looks for inside the config directory.
const ConfigFileName = "partyvault.cfg.json"

// StorageConfig selects and configures the archive backend.
type StorageConfig struct {
	Type       string           `json:"type" mapstructure:"type"`
	Filesystem FilesystemConfig `json:"filesystem" mapstructure:"filesystem"`
	SQLite     SQLiteConfig     `json:"sqlite" mapstructure:"sqlite"`
}

// FilesystemConfig holds the directory-of-files backend settings.
type FilesystemConfig struct {
	Dir       string `json:"dir" mapstructure:"dir"`
	Extension string `json:"extension" mapstructure:"extension"`
}

// SQLiteConfig holds the SQLite backend settings. An empty Path means an
// in-memory database.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// RosterConfig drives the default party generator.
type RosterConfig struct {
	Size int   `json:"size" mapstructure:"size"`
	Seed int64 `json:"seed" mapstructure:"seed"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds the archive metrics sink settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// GraylogConfig holds the optional GELF log sink settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SetDefaults registers every default value. Load calls it; tests and the
// CLI may call it directly when no config file is wanted.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./partylogs")

	viper.SetDefault("storage.type", "filesystem")
	viper.SetDefault("storage.filesystem.dir", "./parties")
	viper.SetDefault("storage.filesystem.extension", ".data")
	viper.SetDefault("storage.sqlite.path", "./parties.db")

	viper.SetDefault("roster.size", 4)
	viper.SetDefault("roster.seed", 0)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "partyvault")
	viper.SetDefault("influx.bucket", "archive_ops")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "partyvault")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", false)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the archive backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Filesystem: FilesystemConfig{
			Dir:       viper.GetString("storage.filesystem.dir"),
			Extension: viper.GetString("storage.filesystem.extension"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetRosterConfig returns the party generator configuration.
func GetRosterConfig() RosterConfig {
	return RosterConfig{
		Size: viper.GetInt("roster.size"),
		Seed: viper.GetInt64("roster.seed"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB metrics sink configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the GELF sink configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
