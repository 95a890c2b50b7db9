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

package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/context"
	"github.com/solarcareer/solarcareer/pkg/server/database"
)

// AuthWithSession resolves the user of the request's session
func AuthWithSession(a *app.App, r *http.Request) (*database.User, bool, error) {
	key, err := GetCredential(r)
	if err != nil {
		return nil, false, err
	}
	if key == "" {
		return nil, false, nil
	}

	user, err := a.GetSessionUser(key)
	if errors.Is(err, app.ErrNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "finding session user")
	}

	return user, true, nil
}

// Auth is an authentication middleware. It rejects requests without a live
// session and puts the user in the request context otherwise.
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := AuthWithSession(a, r)
		if errors.Is(err, ErrMalformedAuthorization) {
			RespondUnauthorized(w)
			return
		}
		if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}
		if !ok {
			RespondUnauthorized(w)
			return
		}

		ctx := context.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
