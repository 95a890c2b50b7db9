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

package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	clictx "github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/remote"
	"github.com/solarcareer/solarcareer/pkg/document"
)

const (
	defaultPollWait   = 30 * time.Second
	defaultRetryDelay = 5 * time.Second
)

// HTTPStore is a remote document store served by the SolarCareer server
type HTTPStore struct {
	ctx clictx.SolarCtx

	// PollWait is how long the server may hold a listen request
	PollWait time.Duration
	// RetryDelay is the pause before polling again after a failed poll
	RetryDelay time.Duration
}

// NewHTTPStore returns a store using the endpoint and the session of the context
func NewHTTPStore(ctx clictx.SolarCtx) *HTTPStore {
	return &HTTPStore{
		ctx:        ctx,
		PollWait:   defaultPollWait,
		RetryDelay: defaultRetryDelay,
	}
}

// Set upserts a document
func (s *HTTPStore) Set(ctx context.Context, path string, data json.RawMessage, merge bool) error {
	if _, err := PutDoc(ctx, s.ctx, path, data, merge); err != nil {
		return errors.Wrapf(err, "setting %s", path)
	}

	return nil
}

// Commit applies the writes as one batch
func (s *HTTPStore) Commit(ctx context.Context, writes []remote.Write) error {
	if len(writes) == 0 {
		return nil
	}

	if _, err := Batch(ctx, s.ctx, writes); err != nil {
		return errors.Wrap(err, "committing the batch")
	}

	return nil
}

// Listen long-polls a collection or a document and delivers its content
// every time its version changes. Failed polls are reported to onError and
// polled again after the retry delay.
func (s *HTTPStore) Listen(ctx context.Context, path string, onChange func([]remote.Document), onError func(error)) (remote.Unsubscribe, error) {
	if _, err := document.Split(path); err != nil {
		return nil, errors.Wrapf(err, "listening to %s", path)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		version := -1
		for {
			resp, err := GetDocs(ctx, s.ctx, path, version, s.PollWait)
			if ctx.Err() != nil {
				return
			}

			if err != nil {
				log.Debug("polling %s: %s\n", path, err.Error())
				if onError != nil {
					onError(errors.Wrapf(err, "polling %s", path))
				}

				select {
				case <-ctx.Done():
					return
				case <-time.After(s.RetryDelay):
				}
				continue
			}

			if resp.Version > version || version < 0 {
				version = resp.Version
				onChange(resp.Documents)
			}
		}
	}()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}

	return unsub, nil
}
