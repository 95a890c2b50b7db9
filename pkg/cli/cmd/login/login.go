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

package login

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/client"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/infra"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/cli/ui"
	"github.com/spf13/cobra"
)

var example = `
  solarcareer login

  solarcareer login --apiEndpoint https://solarcareer.example.com/api`

var usernameFlag, passwordFlag, apiEndpointFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.SolarCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server to synchronize the data",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&usernameFlag, "username", "u", "", "email address for authentication")
	f.StringVarP(&passwordFlag, "password", "p", "", "password for authentication")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do logs in and persists the session. The local data is left as is:
// the next commands read and write the remote collections of the user.
func Do(ctx context.SolarCtx, email, password string) (client.SigninResponse, error) {
	s, err := client.Signin(ctx, email, password)
	if err != nil {
		return s, errors.Wrap(err, "requesting session")
	}

	if err := infra.SaveSession(ctx.DB, s); err != nil {
		return s, errors.Wrap(err, "saving session")
	}

	return s, nil
}

func getUsername() (string, error) {
	if usernameFlag != "" {
		return usernameFlag, nil
	}

	var email string
	if err := ui.PromptInput("email", &email); err != nil {
		return "", errors.Wrap(err, "getting email input")
	}
	if email == "" {
		return "", errors.New("Email is empty")
	}

	return email, nil
}

func getPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	var password string
	if err := ui.PromptPassword("password", &password); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}
	if password == "" {
		return "", errors.New("Password is empty")
	}

	return password, nil
}

// getServerDisplayURL returns the scheme and the host of the API endpoint
func getServerDisplayURL(ctx context.SolarCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}

func newRun(ctx context.SolarCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = strings.TrimSuffix(apiEndpointFlag, "/")
		}

		if display := getServerDisplayURL(ctx); display != "" {
			log.Plainf("Logging into SolarCareer server at %s\n", display)
		}

		email, err := getUsername()
		if err != nil {
			return errors.Wrap(err, "getting email input")
		}
		password, err := getPassword()
		if err != nil {
			return errors.Wrap(err, "getting password input")
		}

		s, err := Do(ctx, email, password)
		if errors.Cause(err) == client.ErrInvalidLogin {
			log.Error("wrong login\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Successf("logged in as %s\n", s.UserID)

		return nil
	}
}
