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

// Package config resolves the server configuration from flags, the
// environment and defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/solarcareer/solarcareer/pkg/dirs"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// AppEnvTest represents an app environment for tests.
	AppEnvTest string = "TEST"
	// DefaultDBDir is the default directory name for the server data
	DefaultDBDir = "solarcareer"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"

	// DBDriverSQLite is the SQLite database driver
	DBDriverSQLite = "sqlite"
	// DBDriverPostgres is the Postgres database driver
	DBDriverPostgres = "postgres"
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrDBDriverInvalid is an error for an unsupported database driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrSessionTTLInvalid is an error for a non-positive session lifetime
	ErrSessionTTLInvalid = errors.New("Invalid session TTL")
	// ErrScheduleInvalid is an error for a maintenance schedule that cannot be parsed
	ErrScheduleInvalid = errors.New("Invalid maintenance schedule")
)

// DefaultDBPath returns the default path to the database file
func DefaultDBPath() string {
	base, err := dirs.Resolve()
	if err != nil {
		return DefaultDBFilename
	}

	return filepath.Join(base.Data, DefaultDBDir, DefaultDBFilename)
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

func getDurationOrEnv(value time.Duration, envKey string, defaultVal time.Duration) (time.Duration, error) {
	if value != 0 {
		return value, nil
	}

	env := os.Getenv(envKey)
	if env == "" {
		return defaultVal, nil
	}

	d, err := time.ParseDuration(env)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", envKey)
	}

	return d, nil
}

// LoadEnvFile loads the variables of a dotenv file into the environment
// without overriding the ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

// Config is an application configuration
type Config struct {
	AppEnv              string
	Port                string
	DBDriver            string
	DBPath              string
	DatabaseURL         string
	LogLevel            string
	SessionTTL          time.Duration
	MaxPollWait         time.Duration
	MaintenanceSchedule string
	DisableRateLimit    bool
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv              string
	Port                string
	DBDriver            string
	DBPath              string
	DatabaseURL         string
	LogLevel            string
	SessionTTL          time.Duration
	MaxPollWait         time.Duration
	MaintenanceSchedule string
	DisableRateLimit    bool
}

// New constructs and returns a new validated config.
// Empty params fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	sessionTTL, err := getDurationOrEnv(p.SessionTTL, "SESSION_TTL", 24*100*time.Hour)
	if err != nil {
		return Config{}, err
	}
	maxPollWait, err := getDurationOrEnv(p.MaxPollWait, "MAX_POLL_WAIT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	c := Config{
		AppEnv:              getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:                getOrEnv(p.Port, "PORT", "3001"),
		DBDriver:            getOrEnv(p.DBDriver, "DB_DRIVER", DBDriverSQLite),
		DBPath:              getOrEnv(p.DBPath, "DBPath", DefaultDBPath()),
		DatabaseURL:         getOrEnv(p.DatabaseURL, "DATABASE_URL", ""),
		LogLevel:            getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
		SessionTTL:          sessionTTL,
		MaxPollWait:         maxPollWait,
		MaintenanceSchedule: getOrEnv(p.MaintenanceSchedule, "MAINTENANCE_SCHEDULE", "@every 5m"),
		DisableRateLimit:    p.DisableRateLimit || readBoolEnv("DisableRateLimit"),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// DSN returns the data source name for the configured driver
func (c Config) DSN() string {
	if c.DBDriver == DBDriverPostgres {
		return c.DatabaseURL
	}

	return c.DBPath
}

func validate(c Config) error {
	if c.Port == "" {
		return ErrPortInvalid
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	switch c.DBDriver {
	case DBDriverSQLite:
		if c.DBPath == "" {
			return ErrDBMissingPath
		}
	case DBDriverPostgres:
		if c.DatabaseURL == "" {
			return ErrDBMissingPath
		}
	default:
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}

	if c.SessionTTL <= 0 {
		return ErrSessionTTLInvalid
	}

	if c.MaintenanceSchedule != "" {
		if _, err := cron.Parse(c.MaintenanceSchedule); err != nil {
			return errors.Wrapf(ErrScheduleInvalid, "'%s'", c.MaintenanceSchedule)
		}
	}

	return nil
}
