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

// Package database provides access to the local SQLite database
package database

import (
	"database/sql"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLCommon is the minimal interface shared by a connection and a transaction
type SQLCommon interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type sqlDb interface {
	Begin() (*sql.Tx, error)
	Close() error
}

type sqlTx interface {
	Commit() error
	Rollback() error
}

// DB is a database connection or a transaction
type DB struct {
	Conn     SQLCommon
	Filepath string
}

// Open opens the SQLite database at the given path
func Open(filepath string) (*DB, error) {
	db, err := sql.Open("sqlite3", filepath)
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}

	// a single connection serializes writers and keeps shared in-memory
	// databases alive
	db.SetMaxOpenConns(1)

	return &DB{
		Conn:     db,
		Filepath: filepath,
	}, nil
}

// Begin begins a transaction
func (d *DB) Begin() (*DB, error) {
	db, ok := d.Conn.(sqlDb)
	if !ok || db == nil {
		return nil, errors.New("cannot begin a transaction on a transaction")
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{Conn: tx, Filepath: d.Filepath}, nil
}

// Commit commits a transaction
func (d *DB) Commit() error {
	tx, ok := d.Conn.(sqlTx)
	if !ok || tx == nil {
		return errors.New("not a transaction")
	}

	return tx.Commit()
}

// Rollback rolls back a transaction. It is a no-op on a connection.
func (d *DB) Rollback() error {
	tx, ok := d.Conn.(sqlTx)
	if !ok || tx == nil {
		return nil
	}

	return tx.Rollback()
}

// Close closes the connection
func (d *DB) Close() error {
	db, ok := d.Conn.(sqlDb)
	if !ok || db == nil {
		return errors.New("cannot close a transaction")
	}

	return db.Close()
}

// Exec executes a query without returning rows
func (d *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return d.Conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (d *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return d.Conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (d *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return d.Conn.QueryRow(query, args...)
}
