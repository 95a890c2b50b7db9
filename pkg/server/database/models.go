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
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user. MaxUSN is the version of the latest write
// made to any of the user's documents.
type User struct {
	Model
	UUID        string     `json:"uuid" gorm:"type:text;uniqueIndex"`
	Email       string     `json:"email" gorm:"type:text;uniqueIndex"`
	Password    string     `json:"-"`
	LastLoginAt *time.Time `json:"-"`
	MaxUSN      int        `json:"-" gorm:"default:0"`
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"type:text;uniqueIndex"`
	LastUsedAt time.Time
	ExpiresAt  time.Time `gorm:"index"`
}

// Document is a JSON object stored at a path owned by a user. Parent is the
// path of the collection holding it, or empty for the root user document.
type Document struct {
	Model
	UserID int    `json:"-" gorm:"uniqueIndex:idx_documents_user_path"`
	Path   string `json:"path" gorm:"type:text;uniqueIndex:idx_documents_user_path"`
	Parent string `json:"-" gorm:"type:text;index"`
	Data   string `json:"-" gorm:"type:text"`
	USN    int    `json:"-" gorm:"index"`
}
