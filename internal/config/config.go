package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logger"
)

const (
	InvalidRecordAbort = "abort"
	InvalidRecordSkip  = "skip"
)

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	LogConfig logger.LogConfig `json:"log_config"`
	FileStore FileStoreConfig  `json:"file_store"`
	Import    ImportConfig     `json:"import"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	DSN      string `json:"dsn"`
	Path     string `json:"path"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ImportConfig struct {
	TmpDir                string `json:"tmp_dir"`
	MaxArchiveSize        string `json:"max_archive_size"`
	MaxEntries            int    `json:"max_entries"`
	MaxExtractedSize      string `json:"max_extracted_size"`
	OnInvalidRecord       string `json:"on_invalid_record"`
	StrictKind            bool   `json:"strict_kind"`
	StatusCacheSize       int    `json:"status_cache_size"`
	StatusCacheTTLSeconds int    `json:"status_cache_ttl_seconds"`
	SweepCron             string `json:"sweep_cron"`
	SweepMaxAgeHours      int    `json:"sweep_max_age_hours"`
}

// MaxArchiveBytes returns the parsed archive limit, 0 meaning unlimited.
func (c ImportConfig) MaxArchiveBytes() uint64 {
	return parseSize(c.MaxArchiveSize)
}

func (c ImportConfig) MaxExtractedBytes() uint64 {
	return parseSize(c.MaxExtractedSize)
}

func parseSize(value string) uint64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0
	}
	return n
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" && cfg.Database.DSN == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if cfg.Database.DSN == "" && cfg.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for postgres")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres")
	}

	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Data == nil {
		return fmt.Errorf("file_store.data is required")
	}

	if cfg.Import.TmpDir == "" {
		cfg.Import.TmpDir = filepath.Join(os.TempDir(), "labimport")
	}
	if cfg.Import.MaxArchiveSize != "" {
		if _, err := humanize.ParseBytes(cfg.Import.MaxArchiveSize); err != nil {
			return fmt.Errorf("import.max_archive_size: %w", err)
		}
	}
	if cfg.Import.MaxExtractedSize != "" {
		if _, err := humanize.ParseBytes(cfg.Import.MaxExtractedSize); err != nil {
			return fmt.Errorf("import.max_extracted_size: %w", err)
		}
	}
	if cfg.Import.MaxEntries == 0 {
		cfg.Import.MaxEntries = 10000
	}
	cfg.Import.OnInvalidRecord = strings.ToLower(strings.TrimSpace(cfg.Import.OnInvalidRecord))
	switch cfg.Import.OnInvalidRecord {
	case "":
		cfg.Import.OnInvalidRecord = InvalidRecordAbort
	case InvalidRecordAbort, InvalidRecordSkip:
	default:
		return fmt.Errorf("import.on_invalid_record must be abort or skip")
	}
	if cfg.Import.StatusCacheSize == 0 {
		cfg.Import.StatusCacheSize = 128
	}
	if cfg.Import.StatusCacheTTLSeconds == 0 {
		cfg.Import.StatusCacheTTLSeconds = 300
	}
	if cfg.Import.SweepCron == "" {
		cfg.Import.SweepCron = "*/30 * * * *"
	}
	if cfg.Import.SweepMaxAgeHours == 0 {
		cfg.Import.SweepMaxAgeHours = 24
	}
	return nil
}
