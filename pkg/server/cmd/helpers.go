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

package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/clock"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/config"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/hub"
	"gorm.io/gorm"
)

func initDB(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DSN(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(db); err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}

	return db, nil
}

func initApp(cfg config.Config) (app.App, error) {
	db, err := initDB(cfg)
	if err != nil {
		return app.App{}, err
	}

	return app.App{
		DB:          db,
		Clock:       clock.New(),
		Hub:         hub.New(),
		SessionTTL:  cfg.SessionTTL,
		MaxPollWait: cfg.MaxPollWait,
	}, nil
}

// printFlags prints flags with -- prefix for consistency with the client
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0s" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, value, fieldName string) {
	if value == "" {
		fmt.Printf("Error: %s is required\n", fieldName)
		fs.Usage()
		os.Exit(1)
	}
}

// dbFlags are the flags selecting the database, shared by the commands
type dbFlags struct {
	driver      *string
	path        *string
	databaseURL *string
}

func addDBFlags(fs *flag.FlagSet) dbFlags {
	return dbFlags{
		driver:      fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)"),
		path:        fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/solarcareer/server.db)"),
		databaseURL: fs.String("databaseUrl", "", "Postgres connection URL (env: DATABASE_URL)"),
	}
}

func (f dbFlags) params() config.Params {
	return config.Params{
		DBDriver:    *f.driver,
		DBPath:      *f.path,
		DatabaseURL: *f.databaseURL,
	}
}

// setupAppWithDB creates config, initializes app, and returns cleanup function
func setupAppWithDB(fs *flag.FlagSet, p config.Params) (*app.App, func()) {
	cfg, err := config.New(p)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	a, err := initApp(cfg)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	cleanup := func() {
		database.Close(a.DB)
	}

	return &a, cleanup
}
