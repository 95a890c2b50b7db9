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

package version

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/upgrade"
	"github.com/spf13/cobra"
)

var checkFlag bool

// NewCmd returns a new version command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of SolarCareer",
		Long:  "Print the version number of SolarCareer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !checkFlag {
				fmt.Printf("solarcareer %s\n", ctx.Version)
				return nil
			}

			gh := upgrade.NewGithubClient(ctx.HTTPClient)
			if _, err := upgrade.CheckVersion(ctx, gh); err != nil {
				return errors.Wrap(err, "checking the latest version")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&checkFlag, "check", false, "compare with the latest release")

	return cmd
}
