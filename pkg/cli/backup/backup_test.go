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

package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/solarcareer/solarcareer/pkg/assert"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
	"github.com/solarcareer/solarcareer/pkg/clock"
)

type staticSource struct {
	state schema.ApplicationState
}

func (s staticSource) State() schema.ApplicationState {
	return s.state
}

// fakeS3 serves the path style object API for a single bucket
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	// pageSize limits the keys per list page
	pageSize int
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, objects: map[string][]byte{}, pageSize: 2}
}

func decodeChunked(b []byte) []byte {
	var ret []byte
	rest := string(b)
	for {
		i := strings.Index(rest, "\r\n")
		if i < 0 {
			return ret
		}
		size, err := strconv.ParseInt(strings.SplitN(rest[:i], ";", 2)[0], 16, 64)
		if err != nil || size == 0 {
			return ret
		}
		rest = rest[i+2:]
		ret = append(ret, rest[:size]...)
		rest = strings.TrimPrefix(rest[size:], "\r\n")
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if parts[0] != f.bucket {
		http.Error(w, "no such bucket", http.StatusNotFound)
		return
	}
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		f.list(w, r)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked") {
			body = decodeChunked(body)
		}
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		w.Write(b)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeS3) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	keys := []string{}
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := r.URL.Query().Get("continuation-token"); token != "" {
		start, _ = strconv.Atoi(token)
	}
	end := start + f.pageSize
	truncated := end < len(keys)
	if !truncated {
		end = len(keys)
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult>`)
	fmt.Fprintf(&b, "<Name>%s</Name><KeyCount>%d</KeyCount><IsTruncated>%t</IsTruncated>", f.bucket, end-start, truncated)
	if truncated {
		fmt.Fprintf(&b, "<NextContinuationToken>%d</NextContinuationToken>", end)
	}
	for _, k := range keys[start:end] {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-03-04T09:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
	}
	b.WriteString("</ListBucketResult>")

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprint(w, b.String())
}

func newTestS3(t *testing.T, prefix string) (*S3Destination, *fakeS3) {
	fake := newFakeS3("backups")
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	d, err := NewS3(context.Background(), S3Config{
		Bucket:          "backups",
		Region:          "us-west-2",
		Endpoint:        server.URL,
		Prefix:          prefix,
		UsePathStyle:    true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		HTTPClient:      server.Client(),
	})
	assert.NoError(t, err, "creating the destination")

	return d, fake
}

func testDestination(t *testing.T, d Destination) {
	ctx := context.Background()

	names, err := d.List(ctx)
	assert.NoError(t, err, "listing an empty destination")
	assert.Equal(t, len(names), 0, "empty destination should list nothing")

	for _, name := range []string{"c.json", "a.json", "b.json"} {
		assert.NoError(t, d.Put(ctx, name, []byte(`{"name":"`+name+`"}`)), "putting "+name)
	}
	assert.NoError(t, d.Put(ctx, "a.json", []byte(`{"name":"a2"}`)), "replacing a.json")

	names, err = d.List(ctx)
	assert.NoError(t, err, "listing")
	assert.DeepEqual(t, names, []string{"a.json", "b.json", "c.json"}, "names mismatch")

	b, err := d.Get(ctx, "a.json")
	assert.NoError(t, err, "getting a.json")
	assert.Equal(t, string(b), `{"name":"a2"}`, "content mismatch")

	_, err = d.Get(ctx, "missing.json")
	assert.Equal(t, err, ErrNotFound, "missing backup error mismatch")
}

func TestDirDestination(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "backups"))
	testDestination(t, d)

	assert.Equal(t, d.Name(), "dir:"+d.Dir, "name mismatch")

	err := d.Put(context.Background(), "../escape.json", []byte("{}"))
	assert.NotEqual(t, err, nil, "should reject names with a directory")
}

func TestS3Destination(t *testing.T) {
	d, fake := newTestS3(t, "")
	testDestination(t, d)

	assert.Equal(t, d.Name(), "s3://backups", "name mismatch")
	assert.Equal(t, len(fake.objects), 3, "object count mismatch")
}

func TestS3Destination_Prefix(t *testing.T) {
	d, fake := newTestS3(t, "/laptop/")
	fake.objects["other/x.json"] = []byte("{}")
	fake.objects["laptop/nested/y.json"] = []byte("{}")

	testDestination(t, d)

	assert.Equal(t, d.Name(), "s3://backups/laptop", "name mismatch")
	_, ok := fake.objects["laptop/a.json"]
	assert.Equal(t, ok, true, "object should be stored under the prefix")
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	assert.NotEqual(t, err, nil, "should fail without a bucket")
}

func TestRunner(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()
	dest := NewDir(t.TempDir())

	state := schema.DefaultState()
	state.Expenses[0].Amount = 250

	r := Runner{Source: staticSource{state: state}, Destination: dest, DB: db, Clock: c}
	rec, err := r.Run(context.Background())
	assert.NoError(t, err, "running")
	assert.Equal(t, rec.Name, "solarcareer_backup_2024-03-04.json", "name mismatch")

	b, err := dest.Get(context.Background(), rec.Name)
	assert.NoError(t, err, "reading the backup")
	assert.Equal(t, rec.Size, len(b), "size mismatch")
	assert.DeepEqual(t, schema.MergeWithDefaults(b), state, "backup content mismatch")

	backups, err := database.ListBackups(db, 10)
	assert.NoError(t, err, "listing backups")
	assert.Equal(t, len(backups), 1, "backup count mismatch")
	assert.Equal(t, backups[0].Destination, dest.Name(), "destination mismatch")
	assert.Equal(t, backups[0].CreatedAt, c.Now().UnixNano(), "created_at mismatch")

	last, err := LastBackup(db)
	assert.NoError(t, err, "getting the last backup")
	assert.Equal(t, last, c.Now().UnixNano(), "last backup mismatch")
}

func TestLastBackup_None(t *testing.T) {
	last, err := LastBackup(database.InitTestMemoryDB(t))
	assert.NoError(t, err, "getting the last backup")
	assert.Equal(t, last, int64(0), "last backup mismatch")
}

func TestScheduler(t *testing.T) {
	dest := NewDir(t.TempDir())
	s := NewScheduler(&Runner{Source: staticSource{state: schema.DefaultState()}, Destination: dest})

	results := make(chan Result, 10)
	s.OnRun = func(r Result) { results <- r }

	assert.NotEqual(t, s.Start("not a schedule"), nil, "should reject an invalid spec")

	assert.NoError(t, s.Start("* * * * * *"), "starting")
	defer s.Stop()
	assert.NotEqual(t, s.Start("* * * * * *"), nil, "should not start twice")

	select {
	case r := <-results:
		assert.NoError(t, r.Err, "scheduled run")
		names, err := dest.List(context.Background())
		assert.NoError(t, err, "listing")
		assert.DeepEqual(t, names, []string{r.Name}, "names mismatch")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a scheduled run")
	}
}

type recordingUpdater struct {
	mu       sync.Mutex
	partials []schema.Partial
}

func (u *recordingUpdater) UpdateData(ctx context.Context, p schema.Partial) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.partials = append(u.partials, p)
	return nil
}

func (u *recordingUpdater) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.partials)
}

// drop writes a file under a temporary name and renames it into place so
// that the watcher never sees a partial write
func drop(t *testing.T, dir, name string, data []byte) string {
	tmp := filepath.Join(dir, name+".part")
	assert.NoError(t, os.WriteFile(tmp, data, 0600), "writing "+tmp)

	p := filepath.Join(dir, name)
	assert.NoError(t, os.Rename(tmp, p), "renaming "+tmp)

	return p
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	u := &recordingUpdater{}

	w, err := NewWatcher(dir, u)
	assert.NoError(t, err, "creating the watcher")

	results := make(chan ImportResult, 10)
	w.OnImport = func(r ImportResult) { results <- r }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 10*time.Millisecond) }()

	next := func() ImportResult {
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for an import")
		}
		return ImportResult{}
	}

	// wait for the first poll before dropping files
	time.Sleep(50 * time.Millisecond)

	state := schema.DefaultState()
	state.Expenses[1].Amount = 90
	b, err := json.Marshal(state)
	assert.NoError(t, err, "marshalling")

	p := drop(t, dir, "solarcareer_backup_2024-03-04.json", b)
	r := next()
	assert.Equal(t, r.Path, p, "path mismatch")
	assert.NoError(t, r.Err, "importing")
	assert.Equal(t, r.Imported, true, "should import a valid backup")

	p = drop(t, dir, "notes.json", []byte(`{"foo": 1}`))
	r = next()
	assert.Equal(t, r.Path, p, "path mismatch")
	assert.Equal(t, r.Imported, false, "should reject an invalid backup")

	assert.Equal(t, u.count(), 1, "update count mismatch")
	assert.DeepEqual(t, u.partials[0].Expenses, state.Expenses, "imported expenses mismatch")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "running")
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_InvalidInterval(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), &recordingUpdater{})
	assert.NoError(t, err, "creating the watcher")

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), 0) }()

	select {
	case err := <-done:
		assert.Equal(t, err, ErrIntervalTooShort, "error mismatch")
	case <-time.After(5 * time.Second):
		t.Fatal("Run should return for an invalid interval")
	}
}
