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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/solarcareer/solarcareer/pkg/assert"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(func() int { return 3 })

	h := m.Instrument("docs", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("PUT", "/api/v1/docs/x", nil))
	m.RateLimited.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	assert.NoError(t, err, "reading body")

	for _, want := range []string{
		`solarcareer_http_requests_total{code="201",method="put",route="docs"} 1`,
		`solarcareer_document_listeners 3`,
		`solarcareer_http_rate_limited_total 1`,
	} {
		assert.Equal(t, strings.Contains(string(body), want), true, "missing "+want)
	}
}
