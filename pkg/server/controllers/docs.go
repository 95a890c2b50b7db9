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

package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/context"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	mw "github.com/solarcareer/solarcareer/pkg/server/middleware"
	"github.com/solarcareer/solarcareer/pkg/server/presenters"
)

// NewDocs creates a new Docs controller.
func NewDocs(app *app.App) *Docs {
	return &Docs{
		app: app,
	}
}

// Docs is a controller for the document store
type Docs struct {
	app *app.App
}

type putQuery struct {
	Merge bool `schema:"merge"`
}

type getQuery struct {
	After *int `schema:"after"`
	// Wait is in seconds
	Wait int `schema:"wait"`
}

// BatchPayload is the payload of POST /api/v1/batch
type BatchPayload struct {
	Writes []app.Write `json:"writes"`
}

// Put handles PUT /api/v1/docs/{path}
func (d *Docs) Put(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, errMissingUser, "getting user")
		return
	}

	path, err := docPathVar(r)
	if err != nil {
		handleJSONError(w, err, "reading path")
		return
	}

	var q putQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		handleJSONError(w, err, "reading body")
		return
	}

	version, err := d.app.WriteDocuments(*user, []app.Write{{
		Path:  path,
		Data:  json.RawMessage(body),
		Merge: q.Merge,
	}})
	if err != nil {
		handleJSONError(w, err, "writing document")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.WriteResult{Version: version})
}

// Batch handles POST /api/v1/batch
func (d *Docs) Batch(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, errMissingUser, "getting user")
		return
	}

	var payload BatchPayload
	if err := parseRequestData(w, r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	version, err := d.app.WriteDocuments(*user, payload.Writes)
	if err != nil {
		handleJSONError(w, err, "writing documents")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.WriteResult{Version: version})
}

// Get handles GET /api/v1/docs/{path}. With the after parameter, the
// request is held until the version passes it or wait seconds elapse.
func (d *Docs) Get(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, errMissingUser, "getting user")
		return
	}

	path, err := docPathVar(r)
	if err != nil {
		handleJSONError(w, err, "reading path")
		return
	}

	var q getQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	if q.After == nil {
		docs, version, err := d.app.ReadDocuments(*user, path)
		if err != nil {
			handleJSONError(w, err, "reading documents")
			return
		}

		mw.RespondJSON(w, http.StatusOK, presenters.PresentDocuments(docs, version))
		return
	}

	wait := time.Duration(q.Wait) * time.Second
	docs, version, err := d.app.WaitDocuments(r.Context(), *user, path, *q.After, wait)
	if err != nil && r.Context().Err() != nil {
		log.WithFields(log.Fields{
			"path": path,
		}).Debug("Reader went away.")
		return
	}
	if err != nil {
		handleJSONError(w, err, "waiting for documents")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentDocuments(docs, version))
}
