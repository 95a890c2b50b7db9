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

package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"

	// commands
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/backup"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/diff"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/expense"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/export"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/importer"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/investor"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/journal"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/login"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/logout"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/recap"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/reset"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/role"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/root"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/status"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/task"
	"github.com/solarcareer/solarcareer/pkg/cli/cmd/version"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseDBPath extracts the --dbPath flag value from the command line
// arguments regardless of where it appears. It returns an empty string if
// the flag is absent.
func parseDBPath(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func main() {
	// --dbPath is needed before the commands are built, and it may follow
	// the subcommand, which root.ParseFlags does not handle
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(versionTag, apiEndpoint, dbPath)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	root.Register(
		status.NewCmd(*ctx),
		task.NewCmd(*ctx),
		expense.NewCmd(*ctx),
		investor.NewCmd(*ctx),
		journal.NewCmd(*ctx),
		recap.NewCmd(*ctx),
		role.NewCmd(*ctx),
		export.NewCmd(*ctx),
		importer.NewCmd(*ctx),
		reset.NewCmd(*ctx),
		backup.NewCmd(*ctx),
		diff.NewCmd(*ctx),
		login.NewCmd(*ctx),
		logout.NewCmd(*ctx),
		version.NewCmd(*ctx),
	)

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		ctx.DB.Close()
		os.Exit(1)
	}
}
