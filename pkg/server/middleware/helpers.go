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

// Package middleware provides the HTTP middlewares and response helpers of
// the server
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/log"
)

// ErrMalformedAuthorization is returned for an Authorization header that is
// not a bearer token
var ErrMalformedAuthorization = errors.New("malformed authorization header")

// ErrorResponse is the body of an error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes v as the JSON body of a response with the status code
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// RespondError responds with the message and the status code
func RespondError(w http.ResponseWriter, statusCode int, msg string) {
	RespondJSON(w, statusCode, ErrorResponse{Message: msg})
}

// DoError logs the error and responds with the status code. Server errors
// hide the error from the client.
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"code": statusCode,
		}).ErrorWrap(err, msg)

		RespondError(w, statusCode, http.StatusText(statusCode))
		return
	}

	m := msg
	if err != nil {
		m = err.Error()
	}

	RespondError(w, statusCode, m)
}

// RespondUnauthorized responds with 401 and a bearer challenge
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Bearer realm="SolarCareer"`)
	RespondError(w, http.StatusUnauthorized, "unauthorized")
}

// getSessionKeyFromAuth reads the bearer token of the Authorization header
func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	scheme, key, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(key) == "" {
		return "", ErrMalformedAuthorization
	}

	return strings.TrimSpace(key), nil
}

// GetCredential extracts the session key from the request. It returns an
// empty string if the request carries no credential.
func GetCredential(r *http.Request) (string, error) {
	key, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from Authorization header")
	}

	return key, nil
}
