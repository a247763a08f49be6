package db

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gatepass/internal/config"
	"gatepass/internal/logging"
)

// Open returns a connected GORM DB instance for the configured driver.
// Driver errors are translated so unique violations surface as
// gorm.ErrDuplicatedKey on every backend.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logging.GORM(logger, cfg.LogDebug),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connection pool: %w", err)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(cfg)), nil
	case config.DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for postgres")
		}
		return postgres.Open(cfg.DatabaseDSN), nil
	case config.DriverSQLite:
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = "gatepass.db?_foreign_keys=1"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// MySQLDSN builds the mysql DSN from the MYSQL_* settings unless a full
// DATABASE_DSN was given.
func MySQLDSN(cfg *config.Config) string {
	if cfg.DatabaseDSN != "" {
		return cfg.DatabaseDSN
	}
	c := mysqldriver.NewConfig()
	c.User = cfg.MySQLUser
	c.Passwd = cfg.MySQLPassword
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.MySQLHost, cfg.MySQLPort)
	c.DBName = cfg.MySQLDatabase
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}
