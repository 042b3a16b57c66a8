// Package influx ships session and engine metrics to InfluxDB. When the
// server is unreachable, points are spooled to a gzipped line-protocol
// backup file instead of being dropped.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Bucket names used by the engine.
const (
	BucketSessionMetrics    = "session_metrics"
	BucketClaimMetrics      = "claim_metrics"
	BucketEnginePerformance = "engine_performance"
)

const bucketRetention = 60 * 60 * 24 * 90 // seconds, 90 days

// Manager owns the InfluxDB client and one async writer per bucket. When
// the server cannot be reached at Connect time, every WritePoint goes to
// the gzip backup spool instead.
type Manager struct {
	client     influxdb2.Client
	writers    map[string]influxdb2_api.WriteAPI
	backup     *gzip.Writer
	connected  bool
	buckets    []string
	log        zerolog.Logger
	backupPath string
}

// NewManager creates a manager writing to the standard engine buckets.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		writers:    make(map[string]influxdb2_api.WriteAPI),
		buckets:    []string{BucketSessionMetrics, BucketClaimMetrics, BucketEnginePerformance},
		log:        log,
		backupPath: backupPath,
	}
}

// Connect dials InfluxDB, bootstraps the org and buckets, and starts the
// per-bucket writers. An unreachable server is not an error; the manager
// falls back to the backup spool.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	url := fmt.Sprintf("%s://%s:%s",
		viper.GetString("influx.protocol"),
		viper.GetString("influx.host"),
		viper.GetString("influx.port"))
	m.client = influxdb2.NewClientWithOptions(url,
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000))

	running, err := m.client.Ping(context.Background())
	if err != nil || !running {
		m.connected = false
		if err := m.openBackup(); err != nil {
			return err
		}
		m.log.Warn().Str("backupPath", m.backupPath).
			Msg("InfluxDB unreachable, spooling points to backup file")
		return nil
	}
	m.connected = true

	if err := m.ensureOrgAndBuckets(); err != nil {
		return err
	}
	m.startWriters()
	m.log.Info().Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.backup != nil {
		return nil
	}
	file, err := os.OpenFile(m.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureOrgAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")
	orgsAPI := m.client.OrganizationsAPI()

	org, err := orgsAPI.FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.log.Info().Str("org", orgName).Msg("Organization not found, creating")
		if org, err = orgsAPI.CreateOrganizationWithName(ctx, orgName); err != nil {
			m.log.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	for _, bucket := range m.buckets {
		if _, err := m.client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.log.Info().Str("bucket", bucket).Msg("Bucket not found, creating")
		rule := domain.RetentionRuleTypeExpire
		_, err := m.client.BucketsAPI().CreateBucketWithName(ctx, org, bucket,
			domain.RetentionRule{Type: &rule, EverySeconds: bucketRetention})
		if err != nil {
			m.log.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return err
		}
	}
	return nil
}

func (m *Manager) startWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.buckets {
		w := m.client.WriteAPI(orgName, bucket)
		m.writers[bucket] = w

		go func(bucket string, errCh <-chan error) {
			for writeErr := range errCh {
				m.log.Error().Err(writeErr).Str("bucket", bucket).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, w.Errors())
	}
	m.log.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint hands a point to the bucket's async writer, or appends it to
// the backup spool when the server is down.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.connected {
		w, ok := m.writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket %q not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	if m.backup == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// SessionSamplePoint builds a point for one accepted tracking sample.
func SessionSamplePoint(kind, ownerID string, distanceMeters, speedKmh float64, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("session_sample").
		AddTag("kind", kind).
		AddTag("owner", ownerID).
		AddField("distance_m", distanceMeters).
		AddField("speed_kmh", speedKmh).
		SetTime(at)
}

// ClaimResultPoint builds a point for a finished claim attempt.
func ClaimResultPoint(ownerID string, valid bool, areaM2 float64, reason string, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("claim_result").
		AddTag("owner", ownerID).
		AddTag("reason", reason).
		AddField("valid", valid).
		AddField("area_m2", areaM2).
		SetTime(at)
}

// PerformancePoint builds a point for the engine health snapshot.
func PerformancePoint(sessionKind string, territoriesQueued, runsQueued int, lastWriteMs float32, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("engine_performance").
		AddTag("kind", sessionKind).
		AddField("territories_queued", territoriesQueued).
		AddField("runs_queued", runsQueued).
		AddField("last_write_ms", lastWriteMs).
		SetTime(at)
}
