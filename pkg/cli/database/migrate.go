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
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationTable records which migrations have been applied
const migrationTable = "schema_migrations"

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// Migrate applies the pending schema migrations and returns how many ran
func Migrate(db *DB) (int, error) {
	conn, ok := db.Conn.(*sql.DB)
	if !ok {
		return 0, errors.New("migrating requires a connection, not a transaction")
	}

	ms := migrate.MigrationSet{TableName: migrationTable}
	n, err := ms.Exec(conn, "sqlite3", migrationSource(), migrate.Up)
	if err != nil {
		return n, errors.Wrap(err, "applying migrations")
	}

	return n, nil
}
