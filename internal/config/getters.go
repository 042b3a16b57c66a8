package config

import (
	"time"

	"github.com/spf13/viper"
)

// TrackingConfig holds sample filter and polling cadence settings.
type TrackingConfig struct {
	MaxAccuracyMeters       float64
	MinTimeInterval         time.Duration
	MinRecordDistanceMeters float64
	MaxSingleMoveMeters     float64
	SampleInterval          time.Duration
	CollisionPollInterval   time.Duration
}

// SpeedConfig holds the speed ceilings for both session kinds.
type SpeedConfig struct {
	ClaimWarnKmh            float64
	ClaimHardKmh            float64
	ExploreHardKmh          float64
	ExploreOverspeedTimeout time.Duration
}

// ValidationConfig holds loop closure and territory validation thresholds.
type ValidationConfig struct {
	ClosureThresholdMeters     float64
	MinimumPathPoints          int
	MinimumTotalDistanceMeters float64
	MinimumEnclosedAreaMeters2 float64
	SeamExemptSegments         int
}

// CollisionConfig holds the proximity warning band thresholds.
type CollisionConfig struct {
	CautionMeters float64
	WarningMeters float64
	DangerMeters  float64
}

// SQLiteConfig holds the file-backed sqlite settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds InfluxDB client settings.
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
}

// MonitorConfig holds engine status reporting settings.
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTrackingConfig returns the sample filter settings.
func GetTrackingConfig() TrackingConfig {
	return TrackingConfig{
		MaxAccuracyMeters:       viper.GetFloat64("tracking.maxAccuracyMeters"),
		MinTimeInterval:         viper.GetDuration("tracking.minTimeInterval"),
		MinRecordDistanceMeters: viper.GetFloat64("tracking.minRecordDistanceMeters"),
		MaxSingleMoveMeters:     viper.GetFloat64("tracking.maxSingleMoveMeters"),
		SampleInterval:          viper.GetDuration("tracking.sampleInterval"),
		CollisionPollInterval:   viper.GetDuration("tracking.collisionPollInterval"),
	}
}

// GetSpeedConfig returns the speed guard settings.
func GetSpeedConfig() SpeedConfig {
	return SpeedConfig{
		ClaimWarnKmh:            viper.GetFloat64("speed.claim.warnKmh"),
		ClaimHardKmh:            viper.GetFloat64("speed.claim.hardKmh"),
		ExploreHardKmh:          viper.GetFloat64("speed.explore.hardKmh"),
		ExploreOverspeedTimeout: viper.GetDuration("speed.explore.overspeedTimeout"),
	}
}

// GetValidationConfig returns the loop validation settings.
func GetValidationConfig() ValidationConfig {
	return ValidationConfig{
		ClosureThresholdMeters:     viper.GetFloat64("validation.closureThresholdMeters"),
		MinimumPathPoints:          viper.GetInt("validation.minimumPathPoints"),
		MinimumTotalDistanceMeters: viper.GetFloat64("validation.minimumTotalDistanceMeters"),
		MinimumEnclosedAreaMeters2: viper.GetFloat64("validation.minimumEnclosedAreaMeters2"),
		SeamExemptSegments:         viper.GetInt("validation.seamExemptSegments"),
	}
}

// GetCollisionConfig returns the proximity band thresholds.
func GetCollisionConfig() CollisionConfig {
	return CollisionConfig{
		CautionMeters: viper.GetFloat64("collision.cautionMeters"),
		WarningMeters: viper.GetFloat64("collision.warningMeters"),
		DangerMeters:  viper.GetFloat64("collision.dangerMeters"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB client settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
	}
}

// GetMonitorConfig returns the engine status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:  viper.GetBool("monitor.enabled"),
		Interval: viper.GetDuration("monitor.interval"),
	}
}
