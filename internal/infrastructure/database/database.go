package database

import (
	"strings"
	"time"

	"edutoken-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// gormConfig routes GORM's logger through zerolog. Lookups that may legitimately miss
// (optional holdings, absent reports) are not logged as errors.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(&log.Logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Open opens a GORM DB from DSN. Postgres DSNs use the pgx driver; "sqlite:<path>" opens
// a local SQLite file (":memory:" works too).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return OpenSQLite(strings.TrimPrefix(dsn, sqlitePrefix))
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
}

// OpenSQLite opens SQLite with a single connection. SQLite has no row locks, so one
// connection is what serializes ledger transactions.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate runs migrations for every ledger table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.PlatformState{},
		&domain.ISA{},
		&domain.TokenHolding{},
		&domain.IncomeReport{},
		&domain.LedgerEvent{},
		&domain.Principal{},
	)
}

// ForUpdate adds a row lock on dialects that support it.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
