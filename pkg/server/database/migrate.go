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

package database

import (
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/database/migrations"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	"gorm.io/gorm"
)

type migrationFile struct {
	filename string
	version  int
}

// parseMigrationFilename reads the version out of a NNN-description.sql name
func parseMigrationFilename(name string) (int, error) {
	base, ok := strings.CutSuffix(name, ".sql")
	if !ok {
		return 0, errors.Errorf("invalid migration filename %s: must end with .sql", name)
	}

	version, description, found := strings.Cut(base, "-")
	if !found {
		return 0, errors.Errorf("invalid migration filename %s: must be NNN-description.sql", name)
	}
	if len(version) != 3 {
		return 0, errors.Errorf("invalid migration filename %s: version must be 3 digits", name)
	}
	if description == "" {
		return 0, errors.Errorf("invalid migration filename %s: description is required", name)
	}

	v, err := strconv.Atoi(version)
	if err != nil || v < 0 {
		return 0, errors.Errorf("invalid migration filename %s: version must be numeric", name)
	}

	return v, nil
}

// getMigrationFiles reads, validates and sorts the migration files
func getMigrationFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading migration directory")
	}

	var ret []migrationFile
	seen := map[int]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".go") {
			continue
		}

		v, err := parseMigrationFilename(name)
		if err != nil {
			return nil, err
		}

		if existing, ok := seen[v]; ok {
			return nil, errors.Errorf("duplicate migration version %d: %s and %s", v, existing, name)
		}
		seen[v] = name

		ret = append(ret, migrationFile{filename: name, version: v})
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].version < ret[j].version
	})

	return ret, nil
}

// Migrate applies the embedded migrations that have not been applied yet
func Migrate(db *gorm.DB) error {
	return migrate(db, migrations.Files)
}

func migrate(db *gorm.DB, fsys fs.FS) error {
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		return errors.Wrap(err, "initializing migration table")
	}

	var current int
	if err := db.Raw("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current).Error; err != nil {
		return errors.Wrap(err, "reading current version")
	}

	files, err := getMigrationFiles(fsys)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"version": current,
		"files":   len(files),
	}).Info("Database schema version.")

	for _, m := range files {
		if m.version <= current {
			continue
		}

		sql, err := fs.ReadFile(fsys, m.filename)
		if err != nil {
			return errors.Wrapf(err, "reading migration file %s", m.filename)
		}
		if strings.TrimSpace(string(sql)) == "" {
			return errors.Errorf("migration file %s is empty", m.filename)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sql)).Error; err != nil {
				return errors.Wrapf(err, "running migration %s", m.filename)
			}
			if err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version).Error; err != nil {
				return errors.Wrapf(err, "recording migration %s", m.filename)
			}

			return nil
		})
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"file": m.filename,
		}).Info("Applied migration.")
	}

	return nil
}
