package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/gncbooks/gncledger/internal/core/services"
	"github.com/gncbooks/gncledger/internal/gncxml"
	"github.com/gncbooks/gncledger/internal/handlers"
	"github.com/gncbooks/gncledger/internal/middleware"
	"github.com/gncbooks/gncledger/internal/platform/config"
	"github.com/gncbooks/gncledger/internal/repositories/database/pgsql"
	"github.com/gncbooks/gncledger/internal/repositories/database/sqlite"
	"github.com/gncbooks/gncledger/pkg/database"

	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
	portssvc "github.com/gncbooks/gncledger/internal/core/ports/services"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	repos, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	formulaFormat := gncxml.FormulaFormat{DecimalSep: rune(cfg.FormulaDecimalSep[0]), GroupSep: '.'}
	if cfg.FormulaDecimalSep == "." {
		formulaFormat.GroupSep = ','
	}
	container := services.NewServiceContainer(repos, formulaFormat)

	switch {
	case len(os.Args) > 1 && os.Args[1] == "import":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: gncledger import <file>")
			os.Exit(2)
		}
		if err := runImport(ctx, container, os.Args[2], logger); err != nil {
			logger.Error("Import failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case len(os.Args) > 1 && os.Args[1] != "serve":
		fmt.Fprintf(os.Stderr, "unknown command %q\nusage: gncledger [serve|import <file>]\n", os.Args[1])
		os.Exit(2)
	default:
		if err := runServer(cfg, container, logger); err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

// openStore connects the configured database backend and returns its
// repository provider along with a cleanup function.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			database.ClosePgxPool(pool)
			return nil, nil, err
		}
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
	default:
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.InitSchema(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewRepositoryProvider(db), func() { db.Close() }, nil
	}
}

// runMigrations applies all pending SQL migrations against Postgres.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer migrationDB.Close()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Database migrations applied")
	}
	return nil
}

// runImport ingests one GnuCash XML file from the command line.
func runImport(ctx context.Context, container *portssvc.ServiceContainer, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ctx = middleware.AddLoggerToCtx(ctx, logger)
	summary, err := container.Import.ImportBook(ctx, f, filepath.Base(path))
	if err != nil {
		return err
	}
	logger.Info("Import complete",
		slog.String("book_uid", summary.BookUID),
		slog.Int64("accounts", summary.AccountCount),
		slog.Int64("transactions", summary.TransactionCount),
		slog.Int64("scheduled_actions", summary.ScheduledActionCount))
	return nil
}

// runServer starts the HTTP API.
func runServer(cfg *config.Config, container *portssvc.ServiceContainer, logger *slog.Logger) error {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	return r.Run(":" + cfg.Port)
}
