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
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	mw "github.com/solarcareer/solarcareer/pkg/server/middleware"
)

// maxBodySize is the largest request body accepted
const maxBodySize = 4 << 20

var (
	errBadRequest  = errors.New("bad request")
	errMissingUser = errors.New("no user in the request context")
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// parseQuery decodes the query string into dst
func parseQuery(r *http.Request, dst interface{}) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}

	return nil
}

// readBody reads the request body up to maxBodySize
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}

	return b, nil
}

// parseRequestData decodes a JSON body, or a form body, into dst
func parseRequestData(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		if err := r.ParseForm(); err != nil {
			return errors.Wrap(errBadRequest, err.Error())
		}
		if err := decoder.Decode(dst, r.PostForm); err != nil {
			return errors.Wrap(errBadRequest, err.Error())
		}

		return nil
	}

	b, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}

	return nil
}

// docPathVar returns the document path of the route, unescaping each segment
func docPathVar(r *http.Request) (string, error) {
	raw := mux.Vars(r)["path"]

	segs := strings.Split(raw, "/")
	for i, s := range segs {
		u, err := url.PathUnescape(s)
		if err != nil || strings.Contains(u, "/") {
			return "", errors.Wrapf(app.ErrInvalidPath, "'%s'", raw)
		}
		segs[i] = u
	}

	return strings.Join(segs, "/"), nil
}

func getStatusCode(err error) int {
	switch errors.Cause(err) {
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrLoginInvalid:
		return http.StatusUnauthorized
	case app.ErrForbidden:
		return http.StatusForbidden
	case app.ErrDuplicateEmail:
		return http.StatusConflict
	case errBadRequest,
		app.ErrEmailRequired,
		app.ErrPasswordTooShort,
		app.ErrPasswordConfirmationMismatch,
		app.ErrInvalidPath,
		app.ErrInvalidData,
		app.ErrBatchTooLarge:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// handleJSONError responds with the status code mapped from the error
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	mw.DoError(w, msg, err, getStatusCode(err))
}
