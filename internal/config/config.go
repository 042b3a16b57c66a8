package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./enginelogs")

	viper.SetDefault("tracking.maxAccuracyMeters", 50.0)
	viper.SetDefault("tracking.minTimeInterval", "1s")
	viper.SetDefault("tracking.minRecordDistanceMeters", 2.0)
	viper.SetDefault("tracking.maxSingleMoveMeters", 100.0)
	viper.SetDefault("tracking.sampleInterval", "2s")
	viper.SetDefault("tracking.collisionPollInterval", "10s")

	viper.SetDefault("speed.claim.warnKmh", 15.0)
	viper.SetDefault("speed.claim.hardKmh", 30.0)
	viper.SetDefault("speed.explore.hardKmh", 30.0)
	viper.SetDefault("speed.explore.overspeedTimeout", "10s")

	viper.SetDefault("validation.closureThresholdMeters", 30.0)
	viper.SetDefault("validation.minimumPathPoints", 10)
	viper.SetDefault("validation.minimumTotalDistanceMeters", 50.0)
	viper.SetDefault("validation.minimumEnclosedAreaMeters2", 100.0)
	viper.SetDefault("validation.seamExemptSegments", 2)

	viper.SetDefault("collision.cautionMeters", 100.0)
	viper.SetDefault("collision.warningMeters", 50.0)
	viper.SetDefault("collision.dangerMeters", 25.0)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./territories")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./stridelands.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "stridelands")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "stridelands-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "stridelands-engine")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "30s")

	viper.SetConfigName("stridelands.cfg.json")
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

// GetFloat returns a float64 config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}
