package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	DBDriver     string
	SQLitePath   string
	DatabaseURL  string
	Port         string
	IsProduction bool

	// FormulaDecimalSep selects the locale convention used to parse the
	// credit and debit formulas of template transactions ("." or ",").
	FormulaDecimalSep string

	// ImportRateLimit is a ulule/limiter formatted rate applied to the
	// import endpoint, e.g. "10-M" for ten requests per minute.
	ImportRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DB_DRIVER", DriverSQLite)
	viper.SetDefault("SQLITE_PATH", "gncledger.db")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("FORMULA_DECIMAL_SEP", ",")
	viper.SetDefault("IMPORT_RATE_LIMIT", "10-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DBDriver:          viper.GetString("DB_DRIVER"),
		SQLitePath:        viper.GetString("SQLITE_PATH"),
		DatabaseURL:       viper.GetString("PGSQL_URL"),
		Port:              viper.GetString("PORT"),
		IsProduction:      viper.GetBool("IS_PRODUCTION"),
		FormulaDecimalSep: viper.GetString("FORMULA_DECIMAL_SEP"),
		ImportRateLimit:   viper.GetString("IMPORT_RATE_LIMIT"),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH must be set when DB_DRIVER is %q", DriverSQLite)
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when DB_DRIVER is %q", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.FormulaDecimalSep != "." && cfg.FormulaDecimalSep != "," {
		log.Printf("Warning: invalid FORMULA_DECIMAL_SEP (%q). Defaulting to \",\".\n", cfg.FormulaDecimalSep)
		cfg.FormulaDecimalSep = ","
	}

	return cfg, nil
}
