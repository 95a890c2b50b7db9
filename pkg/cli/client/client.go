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

// Package client provides interfaces for interacting with the SolarCareer server
// and the data therein
package client

import (
	stdctx "context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"golang.org/x/time/rate"
)

// ErrInvalidLogin is an error for invalid credentials for login
var ErrInvalidLogin = errors.New("wrong credentials")

// ErrContentTypeMismatch is an error for an unexpected response content type
var ErrContentTypeMismatch = errors.New("content type mismatch")

// ErrNoSession is returned by requests that need a session when there is none
var ErrNoSession = errors.New("no session key found")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

var contentTypeApplicationJSON = "application/json"
var contentTypeNone = ""

// requestOptions contains options for requests
type requestOptions struct {
	HTTPClient *http.Client
	// ExpectedContentType is the Content-Type that the client is expecting from the server
	ExpectedContentType *string
	// Context cancels the request
	Context stdctx.Context
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

func getHTTPClient(ctx context.SolarCtx, options *requestOptions) *http.Client {
	if options != nil && options.HTTPClient != nil {
		return options.HTTPClient
	}

	if ctx.HTTPClient != nil {
		return ctx.HTTPClient
	}

	return &http.Client{}
}

func getExpectedContentType(options *requestOptions) string {
	if options != nil && options.ExpectedContentType != nil {
		return *options.ExpectedContentType
	}

	return contentTypeApplicationJSON
}

func getReq(ctx context.SolarCtx, path, method, body string, options *requestOptions) (*http.Request, error) {
	c := stdctx.Background()
	if options != nil && options.Context != nil {
		c = options.Context
	}

	endpoint := fmt.Sprintf("%s%s", ctx.APIEndpoint, path)
	req, err := http.NewRequestWithContext(c, method, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", ctx.Version)
	if body != "" {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}

	if ctx.SessionKey != "" {
		credential := fmt.Sprintf("Bearer %s", ctx.SessionKey)
		req.Header.Set("Authorization", credential)
	}

	return req, nil
}

// checkRespErr returns an HTTPError carrying the response body if the
// response indicates an error
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	bodyStr := string(body)
	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(bodyStr, "\n"),
	}
}

func checkContentType(res *http.Response, options *requestOptions) error {
	expected := getExpectedContentType(options)

	got := res.Header.Get("Content-Type")
	if got != expected {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, expected)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint
func doReq(ctx context.SolarCtx, method, path, body string, options *requestOptions) (*http.Response, error) {
	req, err := getReq(ctx, path, method, body, options)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	hc := getHTTPClient(ctx, options)
	res, err := hc.Do(req)
	if err != nil {
		return res, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		res.Body.Close()
		return res, errors.Wrap(err, "server responded with an error")
	}

	if err = checkContentType(res, options); err != nil {
		res.Body.Close()
		return res, errors.Wrap(err, "unexpected Content-Type")
	}

	return res, nil
}

// doAuthorizedReq does a http request to the given path in the api endpoint as a user,
// with the appropriate headers. The given path should include the preceding slash.
func doAuthorizedReq(ctx context.SolarCtx, method, path, body string, options *requestOptions) (*http.Response, error) {
	if ctx.SessionKey == "" {
		return nil, ErrNoSession
	}

	return doReq(ctx, method, path, body, options)
}

func decodeResp(res *http.Response, v interface{}) error {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decoding payload")
	}

	return nil
}

// docURLPath returns the api path of a document or a collection
func docURLPath(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	return "/v1/docs/" + strings.Join(segs, "/")
}

// WriteResponse is a response from the document write endpoints
type WriteResponse struct {
	Version int `json:"version"`
}

// PutDoc upserts a document
func PutDoc(c stdctx.Context, ctx context.SolarCtx, path string, data json.RawMessage, merge bool) (WriteResponse, error) {
	p := fmt.Sprintf("%s?merge=%t", docURLPath(path), merge)

	res, err := doAuthorizedReq(ctx, "PUT", p, string(data), &requestOptions{Context: c})
	if err != nil {
		return WriteResponse{}, errors.Wrap(err, "making http request")
	}

	var resp WriteResponse
	if err := decodeResp(res, &resp); err != nil {
		return WriteResponse{}, err
	}

	return resp, nil
}

// BatchPayload is a payload for /v1/batch
type BatchPayload struct {
	Writes []remote.Write `json:"writes"`
}

// Batch applies several upserts at once
func Batch(c stdctx.Context, ctx context.SolarCtx, writes []remote.Write) (WriteResponse, error) {
	b, err := json.Marshal(BatchPayload{Writes: writes})
	if err != nil {
		return WriteResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doAuthorizedReq(ctx, "POST", "/v1/batch", string(b), &requestOptions{Context: c})
	if err != nil {
		return WriteResponse{}, errors.Wrap(err, "making http request")
	}

	var resp WriteResponse
	if err := decodeResp(res, &resp); err != nil {
		return WriteResponse{}, err
	}

	return resp, nil
}

// GetDocsResponse is a response from the document read endpoint
type GetDocsResponse struct {
	Version   int               `json:"version"`
	Documents []remote.Document `json:"documents"`
}

// GetDocs reads a collection or a document. If after is not negative, the
// server holds the request for up to wait until the version passes after.
func GetDocs(c stdctx.Context, ctx context.SolarCtx, path string, after int, wait time.Duration) (GetDocsResponse, error) {
	q := url.Values{}
	if after >= 0 {
		q.Set("after", strconv.Itoa(after))
		q.Set("wait", strconv.Itoa(int(wait/time.Second)))
	}

	p := docURLPath(path)
	if len(q) > 0 {
		p = p + "?" + q.Encode()
	}

	res, err := doAuthorizedReq(ctx, "GET", p, "", &requestOptions{Context: c})
	if err != nil {
		return GetDocsResponse{}, errors.Wrap(err, "making http request")
	}

	var resp GetDocsResponse
	if err := decodeResp(res, &resp); err != nil {
		return GetDocsResponse{}, err
	}
	if resp.Documents == nil {
		resp.Documents = []remote.Document{}
	}

	return resp, nil
}

// MeResponse is a response from /v1/me
type MeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// GetMe returns the user of the session
func GetMe(ctx context.SolarCtx) (MeResponse, error) {
	res, err := doAuthorizedReq(ctx, "GET", "/v1/me", "", nil)
	if err != nil {
		return MeResponse{}, errors.Wrap(err, "making http request")
	}

	var resp MeResponse
	if err := decodeResp(res, &resp); err != nil {
		return MeResponse{}, err
	}

	return resp, nil
}

// SigninPayload is a payload for /v1/signin
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse is a response from /v1/signin endpoint
type SigninResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// Signin requests a session token
func Signin(ctx context.SolarCtx, email, password string) (SigninResponse, error) {
	b, err := json.Marshal(SigninPayload{Email: email, Password: password})
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doReq(ctx, "POST", "/v1/signin", string(b), nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsUnauthorized() {
			return SigninResponse{}, ErrInvalidLogin
		}
		return SigninResponse{}, errors.Wrap(err, "making http request")
	}

	var resp SigninResponse
	if err := decodeResp(res, &resp); err != nil {
		return SigninResponse{}, err
	}

	return resp, nil
}

// Signout deletes a user session on the server side
func Signout(ctx context.SolarCtx, sessionKey string) error {
	// share the transport, and thus the rate limiter, without following redirects
	hc := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if ctx.HTTPClient != nil {
		hc.Transport = ctx.HTTPClient.Transport
	} else {
		log.Warnf("No HTTP client configured for signout - falling back\n")
	}

	ctx.SessionKey = sessionKey
	opts := requestOptions{
		HTTPClient:          hc,
		ExpectedContentType: &contentTypeNone,
	}
	res, err := doAuthorizedReq(ctx, "POST", "/v1/signout", "", &opts)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	res.Body.Close()

	return nil
}
