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

package logout

import (
	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/client"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for logging out when not logged in
var ErrNotLoggedIn = errors.New("not logged in")

var example = `
  solarcareer logout`

var apiEndpointFlag string

// NewCmd returns a new logout command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Logout from the server",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do ends the session on the server and forgets it locally. The session
// is forgotten even if the server cannot be reached.
func Do(ctx context.SolarCtx) error {
	if ctx.SessionKey == "" {
		return ErrNotLoggedIn
	}

	serverErr := client.Signout(ctx, ctx.SessionKey)

	if err := infra.ClearSession(ctx.DB); err != nil {
		return errors.Wrap(err, "clearing the session")
	}
	if serverErr != nil {
		log.Warnf("the server did not end the session: %s\n", serverErr.Error())
	}

	return nil
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		err := Do(ctx)
		if err == ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
