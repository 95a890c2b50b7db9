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

// Package consts provides definitions of constants
package consts

var (
	// DirName is the name of the directory containing solarcareer files
	DirName = "solarcareer"
	// DBFileName is the filename of the local SQLite database
	DBFileName = "solarcareer.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "solarcareerrc"
	// TmpContentFileBase is the base of the temporary file used to write journal entries
	TmpContentFileBase = "SOLARCAREER_TMPCONTENT"
	// TmpContentFileExt is the extension of the temporary content file
	TmpContentFileExt = "md"
	// BackupDirName is the name of the default backup directory under the data dir
	BackupDirName = "backups"

	// SnapshotKey is the fixed key of the local state snapshot
	SnapshotKey = "solarcareer_state"

	// SystemLastUpgrade is the timestamp at which the system more recently checked for an upgrade
	SystemLastUpgrade = "last_upgrade"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
	// SystemUserID is the id of the signed in user
	SystemUserID = "user_id"
	// SystemLastBackup is the timestamp of the last successful backup
	SystemLastBackup = "last_backup"
)
