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
	"net/http"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/context"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	mw "github.com/solarcareer/solarcareer/pkg/server/middleware"
	"github.com/solarcareer/solarcareer/pkg/server/presenters"
)

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// LoginForm is the payload of a sign in
type LoginForm struct {
	Email    string `schema:"email" json:"email"`
	Password string `schema:"password" json:"password"`
}

func (u *Users) login(form LoginForm) (*database.User, *database.Session, error) {
	if form.Email == "" {
		return nil, nil, app.ErrEmailRequired
	}

	user, err := u.app.Authenticate(form.Email, form.Password)
	if err != nil {
		// an unknown email is reported like a wrong password
		if errors.Is(err, app.ErrNotFound) {
			return nil, nil, app.ErrLoginInvalid
		}

		return nil, nil, err
	}

	s, err := u.app.SignIn(user)
	if err != nil {
		return nil, nil, err
	}

	return user, s, nil
}

// Signin handles POST /api/v1/signin
func (u *Users) Signin(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := parseRequestData(w, r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, session, err := u.login(form)
	if err != nil {
		handleJSONError(w, err, "logging in user")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentSession(*session, *user))
}

// Signout handles POST /api/v1/signout. Signing out without a session is
// not an error.
func (u *Users) Signout(w http.ResponseWriter, r *http.Request) {
	key, err := mw.GetCredential(r)
	if err != nil {
		handleJSONError(w, errors.Wrap(errBadRequest, err.Error()), "getting credential")
		return
	}

	if key != "" {
		if err := u.app.DeleteSession(key); err != nil {
			handleJSONError(w, err, "deleting session")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		handleJSONError(w, errMissingUser, "getting user")
		return
	}

	mw.RespondJSON(w, http.StatusOK, presenters.PresentUser(*user))
}
