/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database opens the server database and keeps its schema current
package database

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite is the name of the SQLite dialect
	DriverSQLite = "sqlite"
	// DriverPostgres is the name of the Postgres dialect
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned when opening a database with an unsupported driver
var ErrUnknownDriver = errors.New("unknown database driver")

// getDBLogLevel maps the server log level to the gorm logger level.
// Queries are only logged at debug.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

// sqliteDSN appends the connection pragmas to a file path
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}

	return path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
}

// Open opens a connection with the given driver. For SQLite, dsn is the
// database file path and its directory is created if needed.
func Open(driver, dsn, logLevel string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(getDBLogLevel(logLevel)),
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			dir := filepath.Dir(dsn)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrapf(err, "creating database directory at %s", dir)
			}
		}

		dialector = sqlite.Open(sqliteDSN(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "'%s'", driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	return db, nil
}

// InitSchema migrates the tables to reflect the latest model definitions
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&Document{},
	); err != nil {
		return errors.Wrap(err, "auto-migrating models")
	}

	return nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting connection pool")
	}

	return sqlDB.Close()
}
