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

// Package transfer serializes the application state to portable files and
// restores it from them
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/schema"
)

const (
	// TemplateFilename is the name of a sanitized template export
	TemplateFilename = "framework_template_v1.json"
	// backupFilenameFormat is the name of a full export, by date
	backupFilenameFormat = "solarcareer_backup_%s.json"
)

// Updater applies a partial update to the state
type Updater interface {
	UpdateData(ctx context.Context, p schema.Partial) error
}

// BackupFilename returns the name of a full export made at t
func BackupFilename(t time.Time) string {
	return fmt.Sprintf(backupFilenameFormat, t.Format("2006-01-02"))
}

func marshal(state schema.ApplicationState) ([]byte, error) {
	b, err := json.MarshalIndent(schema.Normalize(state), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshalling the state")
	}

	return b, nil
}

// Export serializes the full state
func Export(state schema.ApplicationState, now time.Time) (string, []byte, error) {
	b, err := marshal(state)
	if err != nil {
		return "", nil, err
	}

	return BackupFilename(now), b, nil
}

// Sanitize strips the personal and financial records from the state:
// investors, investor updates, journal, weekly recaps and field logs are
// emptied, and the sync settings are reset. Routine tasks, certifications
// and expenses are kept.
func Sanitize(state schema.ApplicationState) schema.ApplicationState {
	ret := schema.Normalize(state)

	ret.Investors = []schema.Investor{}
	ret.InvestorUpdates = []schema.InvestorUpdate{}
	ret.Journal = []schema.JournalEntry{}
	ret.WeeklyRecaps = []schema.WeeklyRecap{}
	ret.FieldLogs = []schema.FieldLog{}
	ret.SyncSettings = schema.DefaultSyncSettings()

	return ret
}

// ExportSanitizedTemplate serializes the state without personal data, to
// seed a fresh instance
func ExportSanitizedTemplate(state schema.ApplicationState) (string, []byte, error) {
	b, err := marshal(Sanitize(state))
	if err != nil {
		return "", nil, err
	}

	return TemplateFilename, b, nil
}

// Validate reports whether the content is a JSON object carrying at least
// one of the routineTasks and certifications keys
func Validate(b []byte) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil || keys == nil {
		return false
	}

	_, hasTasks := keys[string(schema.FieldRoutineTasks)]
	_, hasCerts := keys[string(schema.FieldCertifications)]

	return hasTasks || hasCerts
}

// Import restores the state from an exported file. Content that is not
// valid JSON or lacks both the routineTasks and the certifications keys is
// rejected with false and nothing is updated. Otherwise the content is
// migrated, merged over the defaults and applied as a whole.
func Import(ctx context.Context, u Updater, r io.Reader) (bool, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return false, errors.Wrap(err, "reading the file")
	}

	if !Validate(b) {
		log.Debug("rejecting an import without routineTasks or certifications\n")
		return false, nil
	}

	state := schema.MergeWithDefaults(b)
	if err := u.UpdateData(ctx, schema.FullPartial(state)); err != nil {
		return false, errors.Wrap(err, "applying the imported state")
	}

	return true, nil
}
