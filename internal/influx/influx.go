package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/rs/zerolog"
)

// Measurement names.
const (
	TickMeasurement  = "robot_tick"
	AlertMeasurement = "robot_alert"
)

// BackupFileName is the gzip line-protocol file used while InfluxDB is unreachable.
const BackupFileName = "influx_backup.lp.gz"

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx is disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	backupFile *os.File
	// backupMu guards BackupWriter and backupFile; ticks and alerts are
	// written from different goroutines.
	backupMu sync.Mutex
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	dir := cfg.BackupDir
	if dir == "" {
		dir = "."
	}
	return &Manager{
		Logger:     log,
		BackupPath: filepath.Join(dir, BackupFileName),
		cfg:        cfg,
	}
}

// Connect establishes a connection to InfluxDB. An unreachable server is not
// an error: points go to the backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	protocol := m.cfg.Protocol
	if protocol == "" {
		protocol = "http"
	}
	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("backupPath", m.BackupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	if m.BackupWriter != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.BackupPath), 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgName := m.cfg.Org

	// ensure org exists
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// ensure bucket exists with 90 day retention
	if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
			return err
		}
	}

	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)

	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WriteTick writes one robot_tick point.
func (m *Manager) WriteTick(rec core.TickRecord) error {
	return m.WritePoint(TickToPoint(rec))
}

// WriteAlert writes one robot_alert point.
func (m *Manager) WriteAlert(ev core.AlertEvent) error {
	return m.WritePoint(AlertToPoint(ev))
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			return fmt.Errorf("error closing backup writer: %w", err)
		}
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		err := m.backupFile.Close()
		m.backupFile = nil
		return err
	}
	return nil
}

// TickToPoint converts a tick record to a robot_tick point.
func TickToPoint(rec core.TickRecord) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement(TickMeasurement).
		AddTag("run_id", rec.RunID).
		AddTag("mode", rec.Mode.String()).
		AddField("tick", rec.Tick).
		AddField("left", rec.Command.Left).
		AddField("right", rec.Command.Right).
		AddField("stuck", rec.Stuck).
		AddField("perturbed", rec.Perturbed).
		SetTime(rec.Time)

	for i, name := range core.SensorNames {
		point.AddField(name, rec.Sensors[i])
	}
	if rec.IndicatorSet {
		point.AddField("indicator", "0x"+strconv.FormatUint(uint64(rec.Indicator), 16))
	}
	return point.SortTags().SortFields()
}

// AlertToPoint converts an alert event to a robot_alert point.
func AlertToPoint(ev core.AlertEvent) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(AlertMeasurement).
		AddTag("run_id", ev.RunID).
		AddTag("object", ev.Object).
		AddField("tick", ev.Tick).
		AddField("dx", ev.DX).
		AddField("dz", ev.DZ).
		SetTime(ev.Time).
		SortTags().
		SortFields()
}
