package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stridelands.cfg.json"), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"tracking": { "maxAccuracyMeters": 25, "minTimeInterval": "2s" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 25.0, viper.GetFloat64("tracking.maxAccuracyMeters"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./enginelogs", viper.GetString("logsDir"))
	assert.Equal(t, 50.0, viper.GetFloat64("tracking.maxAccuracyMeters"))
	assert.Equal(t, 2.0, viper.GetFloat64("tracking.minRecordDistanceMeters"))
	assert.Equal(t, 100.0, viper.GetFloat64("tracking.maxSingleMoveMeters"))
	assert.Equal(t, 15.0, viper.GetFloat64("speed.claim.warnKmh"))
	assert.Equal(t, 30.0, viper.GetFloat64("speed.claim.hardKmh"))
	assert.Equal(t, 30.0, viper.GetFloat64("speed.explore.hardKmh"))
	assert.Equal(t, 30.0, viper.GetFloat64("validation.closureThresholdMeters"))
	assert.Equal(t, 10, viper.GetInt("validation.minimumPathPoints"))
	assert.Equal(t, 50.0, viper.GetFloat64("validation.minimumTotalDistanceMeters"))
	assert.Equal(t, 100.0, viper.GetFloat64("validation.minimumEnclosedAreaMeters2"))
	assert.Equal(t, 100.0, viper.GetFloat64("collision.cautionMeters"))
	assert.Equal(t, 50.0, viper.GetFloat64("collision.warningMeters"))
	assert.Equal(t, 25.0, viper.GetFloat64("collision.dangerMeters"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./territories", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "stridelands-engine", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, "", viper.GetString("otel.endpoint"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetTrackingConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	tc := GetTrackingConfig()
	assert.Equal(t, 50.0, tc.MaxAccuracyMeters)
	assert.Equal(t, time.Second, tc.MinTimeInterval)
	assert.Equal(t, 2.0, tc.MinRecordDistanceMeters)
	assert.Equal(t, 100.0, tc.MaxSingleMoveMeters)
	assert.Equal(t, 2*time.Second, tc.SampleInterval)
	assert.Equal(t, 10*time.Second, tc.CollisionPollInterval)
}

func TestGetSpeedConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	sc := GetSpeedConfig()
	assert.Equal(t, 15.0, sc.ClaimWarnKmh)
	assert.Equal(t, 30.0, sc.ClaimHardKmh)
	assert.Equal(t, 30.0, sc.ExploreHardKmh)
	assert.Equal(t, 10*time.Second, sc.ExploreOverspeedTimeout)
}

func TestGetValidationConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"validation": {
			"closureThresholdMeters": 20,
			"minimumPathPoints": 16,
			"minimumTotalDistanceMeters": 80,
			"minimumEnclosedAreaMeters2": 250,
			"seamExemptSegments": 3
		}
	}`)
	require.NoError(t, Load(dir))

	vc := GetValidationConfig()
	assert.Equal(t, 20.0, vc.ClosureThresholdMeters)
	assert.Equal(t, 16, vc.MinimumPathPoints)
	assert.Equal(t, 80.0, vc.MinimumTotalDistanceMeters)
	assert.Equal(t, 250.0, vc.MinimumEnclosedAreaMeters2)
	assert.Equal(t, 3, vc.SeamExemptSegments)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "/tmp/engine.db" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/engine.db", sc.SQLite.Path)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}
