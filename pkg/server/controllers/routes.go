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

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	mw "github.com/solarcareer/solarcareer/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method  string
	Pattern string
	// Name labels the route in the metrics
	Name      string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	Metrics     *mw.Metrics
	// Limiter rate limits the routes that ask for it. Nil disables it.
	Limiter *mw.RateLimiter
}

// NewAPIRoutes returns the api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"POST", "/v1/signin", "signin", c.Users.Signin, true},
		{"POST", "/v1/signout", "signout", c.Users.Signout, true},
		{"GET", "/v1/me", "me", mw.Auth(a, c.Users.Me), true},
		{"PUT", "/v1/docs/{path:.+}", "docs_put", mw.Auth(a, c.Docs.Put), true},
		{"GET", "/v1/docs/{path:.+}", "docs_get", mw.Auth(a, c.Docs.Get), true},
		{"POST", "/v1/batch", "batch", mw.Auth(a, c.Docs.Batch), true},
	}
}

func registerRoutes(router *mux.Router, rc RouteConfig, routes []Route) {
	for _, route := range routes {
		var h http.Handler = route.Handler
		if route.RateLimit {
			h = mw.ApplyLimit(rc.Limiter, h)
		}
		if rc.Metrics != nil {
			h = rc.Metrics.Instrument(route.Name, h)
		}

		router.Handle(route.Pattern, h).Methods(route.Method)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, http.StatusNotFound, "not found")
}

// NewRouter creates and returns a new router
func NewRouter(a *app.App, rc RouteConfig) (http.Handler, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().UseEncodedPath()

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, rc, rc.APIRoutes)

	router.HandleFunc("/health", rc.Controllers.Health.Index).Methods("GET")
	if rc.Metrics != nil {
		router.Handle("/metrics", rc.Metrics.Handler()).Methods("GET")
	}

	router.NotFoundHandler = http.HandlerFunc(notFound)

	return mw.Logging(router), nil
}
