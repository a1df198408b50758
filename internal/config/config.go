package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/arena"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "boxguard.cfg.json"

// ErrInvalidConfig wraps decode and validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Settings is the typed view of the loaded configuration.
type Settings struct {
	LogLevel   string           `json:"logLevel" mapstructure:"logLevel" validate:"oneof=debug info warn error"`
	LogsDir    string           `json:"logsDir" mapstructure:"logsDir" validate:"required"`
	Controller ControllerConfig `json:"controller" mapstructure:"controller"`
	Arena      arena.Config     `json:"arena" mapstructure:"arena"`
	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
	DB         DBConfig         `json:"db" mapstructure:"db"`
	Influx     InfluxConfig     `json:"influx" mapstructure:"influx"`
	Graylog    GraylogConfig    `json:"graylog" mapstructure:"graylog"`
	OTel       OTelConfig       `json:"otel" mapstructure:"otel"`
	Status     StatusConfig     `json:"status" mapstructure:"status"`
}

// ControllerConfig holds controller settings. Control-law constants are
// deliberately absent.
type ControllerConfig struct {
	TrackedPrefix string `json:"trackedPrefix" mapstructure:"trackedPrefix" validate:"required"`
	// Seed for the perturbation source; 0 picks one from the clock.
	Seed int64 `json:"seed" mapstructure:"seed"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type" validate:"oneof=memory sqlite postgres"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend.
type SQLiteConfig struct {
	OutputDir    string        `json:"outputDir" mapstructure:"outputDir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// InfluxConfig holds InfluxDB telemetry settings.
type InfluxConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Protocol  string `json:"protocol" mapstructure:"protocol" validate:"omitempty,oneof=http https"`
	Token     string `json:"token" mapstructure:"token"`
	Org       string `json:"org" mapstructure:"org"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
	BackupDir string `json:"backupDir" mapstructure:"backupDir"`
}

// GraylogConfig holds GELF output settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address" validate:"required_if=Enabled true"`
}

// OTelConfig holds OpenTelemetry metrics settings.
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	ExportInterval time.Duration `json:"exportInterval" mapstructure:"exportInterval"`
	// OutputFile receives exported metrics; empty means stdout.
	OutputFile string `json:"outputFile" mapstructure:"outputFile"`
}

// StatusConfig controls the periodic status file.
type StatusConfig struct {
	Enabled  bool          `json:"enabled" mapstructure:"enabled"`
	Path     string        `json:"path" mapstructure:"path"`
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./boxguardlogs")

	viper.SetDefault("controller.trackedPrefix", "CAIXA")
	viper.SetDefault("controller.seed", 0)

	def := arena.DefaultConfig()
	viper.SetDefault("arena.width", def.Width)
	viper.SetDefault("arena.depth", def.Depth)
	viper.SetDefault("arena.maxTicks", 2000)
	viper.SetDefault("arena.robot.x", def.Robot.X)
	viper.SetDefault("arena.robot.z", def.Robot.Z)
	viper.SetDefault("arena.robot.heading", def.Robot.Heading)
	boxes := make([]map[string]any, len(def.Boxes))
	for i, b := range def.Boxes {
		boxes[i] = map[string]any{"name": b.Name, "x": b.X, "z": b.Z, "size": b.Size}
	}
	viper.SetDefault("arena.boxes", boxes)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.outputDir", "./recordings")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "boxguard")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "boxguard")
	viper.SetDefault("influx.bucket", "robot_telemetry")
	viper.SetDefault("influx.backupDir", "./boxguardlogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "boxguard")
	viper.SetDefault("otel.exportInterval", "10s")
	viper.SetDefault("otel.outputFile", "")

	viper.SetDefault("status.enabled", true)
	viper.SetDefault("status.path", "./boxguardlogs/status.json")
	viper.SetDefault("status.interval", "1s")
}

// Current decodes the loaded configuration into Settings and validates it.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

// IsNotFound reports whether err came from a missing config file.
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}
