package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/braincoral/reefplan/internal/domain/models"
)

// Supported batch-row sources.
const (
	SourceWarehouse = "warehouse"
	SourceSheet     = "sheet"
	SourceStatic    = "static"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Warehouse WarehouseConfig
	Sheets    SheetsConfig
	Planning  PlanningConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds connection settings for the plan store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WarehouseConfig points at the inventory warehouse API.
type WarehouseConfig struct {
	BaseURL  string
	APIToken string
}

// SheetsConfig contains configuration required to read inventory rows from
// a Google Sheet.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ReadRange       string
}

// PlanningConfig holds the default planning run parameters and the
// snapshot schedule.
type PlanningConfig struct {
	Tenant       string
	ForecastDays int
	BatchSource  string
	SnapshotCron string
	Seed         int64
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	days, err := getenvInt("FORECAST_DAYS", 365)
	if err != nil {
		return nil, err
	}
	seed, err := getenvInt("PLANNING_SEED", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "reefplan"),
		},
		Warehouse: WarehouseConfig{
			BaseURL:  os.Getenv("WAREHOUSE_BASE_URL"),
			APIToken: os.Getenv("WAREHOUSE_API_TOKEN"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_INVENTORY_ID"),
			ReadRange:       getenvWithDefault("GOOGLE_SHEET_INVENTORY_RANGE", "Inventory!A2:H"),
		},
		Planning: PlanningConfig{
			Tenant:       getenvWithDefault("TENANT", models.TenantFreeport),
			ForecastDays: days,
			BatchSource:  getenvWithDefault("BATCH_SOURCE", SourceWarehouse),
			SnapshotCron: getenvWithDefault("PLAN_SNAPSHOT_CRON", "0 2 * * *"),
			Seed:         int64(seed),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated. It
// fails fast so simulation code never runs against silently defaulted
// settings.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	switch c.Planning.Tenant {
	case models.TenantSaudi, models.TenantFreeport:
	default:
		return fmt.Errorf("TENANT must be one of %q or %q", models.TenantSaudi, models.TenantFreeport)
	}

	if c.Planning.ForecastDays < 1 || c.Planning.ForecastDays > 365 {
		return errors.New("FORECAST_DAYS must be between 1 and 365")
	}

	if c.Planning.SnapshotCron == "" {
		return errors.New("PLAN_SNAPSHOT_CRON must be provided")
	}

	switch c.Planning.BatchSource {
	case SourceWarehouse:
		if c.Warehouse.BaseURL == "" {
			return errors.New("WAREHOUSE_BASE_URL must be provided when BATCH_SOURCE is warehouse")
		}
	case SourceSheet:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when BATCH_SOURCE is sheet")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_INVENTORY_ID must be provided when BATCH_SOURCE is sheet")
		}
	case SourceStatic:
	default:
		return fmt.Errorf("BATCH_SOURCE must be one of %q, %q or %q", SourceWarehouse, SourceSheet, SourceStatic)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
