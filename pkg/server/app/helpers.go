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

package app

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/document"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"gorm.io/gorm"
)

// nextVersion advances the document store version of a user and returns it.
// Every document written in the same transaction is stamped with it.
func nextVersion(tx *gorm.DB, userID int) (int, error) {
	if err := tx.Model(&database.User{}).Where("id = ?", userID).Update("max_usn", gorm.Expr("max_usn + 1")).Error; err != nil {
		return 0, errors.Wrap(err, "advancing the document version")
	}

	var user database.User
	if err := tx.Select("max_usn").Where("id = ?", userID).First(&user).Error; err != nil {
		return 0, errors.Wrap(err, "reading the document version")
	}

	return user.MaxUSN, nil
}

// checkPath validates a path and its ownership by the user
func checkPath(user database.User, path string) (string, error) {
	segs, err := document.Split(path)
	if err != nil {
		return "", errors.Wrap(ErrInvalidPath, err.Error())
	}
	if segs[1] != user.UUID {
		return "", ErrForbidden
	}

	return strings.Join(segs, "/"), nil
}

// compactObject returns the compact encoding of a JSON object
func compactObject(data json.RawMessage) (string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return "", ErrInvalidData
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", ErrInvalidData
	}

	return buf.String(), nil
}
