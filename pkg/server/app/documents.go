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
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/document"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"gorm.io/gorm"
)

// MaxBatchSize is the largest number of writes accepted in one batch
const MaxBatchSize = 500

// Write is an upsert of a single document. With Merge, the data is merged
// key by key into the stored document instead of replacing it.
type Write struct {
	Path  string          `json:"path"`
	Data  json.RawMessage `json:"data"`
	Merge bool            `json:"merge"`
}

func (a *App) applyWrite(tx *gorm.DB, user database.User, usn int, w Write) error {
	path, err := checkPath(user, w.Path)
	if err != nil {
		return err
	}
	if document.IsCollection(path) {
		return errors.Wrapf(ErrInvalidPath, "'%s' is a collection", w.Path)
	}

	data, err := compactObject(w.Data)
	if err != nil {
		return err
	}

	var doc database.Document
	err = tx.Where("user_id = ? AND path = ?", user.ID, path).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		doc = database.Document{
			UserID: user.ID,
			Path:   path,
			Parent: document.Parent(path),
		}
	} else if err != nil {
		return errors.Wrapf(err, "finding document %s", path)
	}

	if w.Merge && doc.ID != 0 {
		merged, err := document.Merge(json.RawMessage(doc.Data), json.RawMessage(data))
		if err != nil {
			return errors.Wrapf(err, "merging document %s", path)
		}
		data = string(merged)
	}

	doc.Data = data
	doc.USN = usn

	if err := tx.Save(&doc).Error; err != nil {
		return errors.Wrapf(err, "saving document %s", path)
	}

	return nil
}

// WriteDocuments applies the writes atomically. All documents written
// share one new version, which is returned. An empty batch writes nothing
// and returns the current version.
func (a *App) WriteDocuments(user database.User, writes []Write) (int, error) {
	if len(writes) > MaxBatchSize {
		return 0, ErrBatchTooLarge
	}
	if len(writes) == 0 {
		return user.MaxUSN, nil
	}

	var usn int
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		usn, err = nextVersion(tx, user.ID)
		if err != nil {
			return err
		}

		for _, w := range writes {
			if err := a.applyWrite(tx, user, usn, w); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	a.Hub.Publish(user.UUID, usn)

	return usn, nil
}

// ReadDocuments returns the documents of a collection in creation order, or
// the single document at a document path. The version is the highest
// version among the returned documents, 0 if there are none.
func (a *App) ReadDocuments(user database.User, path string) ([]database.Document, int, error) {
	p, err := checkPath(user, path)
	if err != nil {
		return nil, 0, err
	}

	conn := a.DB.Where("user_id = ?", user.ID)
	if document.IsCollection(p) {
		conn = conn.Where("parent = ?", p)
	} else {
		conn = conn.Where("path = ?", p)
	}

	var docs []database.Document
	if err := conn.Order("id ASC").Find(&docs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "finding documents")
	}

	version := 0
	for _, d := range docs {
		if d.USN > version {
			version = d.USN
		}
	}

	return docs, version, nil
}

// WaitDocuments reads the path like ReadDocuments, holding the call until
// its version passes after or wait elapses. wait is capped at MaxPollWait.
// On timeout the current documents are returned unchanged.
func (a *App) WaitDocuments(ctx context.Context, user database.User, path string, after int, wait time.Duration) ([]database.Document, int, error) {
	if wait > a.MaxPollWait {
		wait = a.MaxPollWait
	}

	// subscribe before reading so that no write is missed in between
	changes, cancel := a.Hub.Subscribe(user.UUID)
	defer cancel()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		docs, version, err := a.ReadDocuments(user, path)
		if err != nil {
			return nil, 0, err
		}
		if version > after || wait <= 0 {
			return docs, version, nil
		}

		select {
		case <-changes:
		case <-timer.C:
			return docs, version, nil
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
}
