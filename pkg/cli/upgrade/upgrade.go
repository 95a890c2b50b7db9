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

// Package upgrade checks for new releases
package upgrade

import (
	stdctx "context"
	"net/http"
	"strings"

	"github.com/google/go-github/github"
	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"github.com/solarcareer/solarcareer/pkg/cli/database"
	"github.com/solarcareer/solarcareer/pkg/cli/log"
	"github.com/solarcareer/solarcareer/pkg/prompt"
)

const (
	repoOwner = "solarcareer"
	repoName  = "solarcareer"
	// upgradeInterval is three weeks in seconds
	upgradeInterval int64 = 86400 * 7 * 3
)

// NewGithubClient returns a github client over the given http client
func NewGithubClient(hc *http.Client) *github.Client {
	return github.NewClient(hc)
}

func shouldCheckUpdate(ctx context.SolarCtx) (bool, error) {
	if !ctx.EnableUpgradeCheck {
		return false, nil
	}

	var lastUpgrade int64
	err := database.GetSystem(ctx.DB, consts.SystemLastUpgrade, &lastUpgrade)
	if err == database.ErrNotFound {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "getting last_upgrade")
	}

	now := ctx.Clock.Now().Unix()

	return now-lastUpgrade > upgradeInterval, nil
}

func touchLastUpgrade(ctx context.SolarCtx) error {
	now := ctx.Clock.Now().Unix()
	if err := database.UpsertSystem(ctx.DB, consts.SystemLastUpgrade, now); err != nil {
		return errors.Wrap(err, "updating last_upgrade")
	}

	return nil
}

// LatestVersion returns the version of the latest stable release
func LatestVersion(c stdctx.Context, gh *github.Client) (string, error) {
	opts := &github.ListOptions{PerPage: 30}

	for {
		releases, resp, err := gh.Repositories.ListReleases(c, repoOwner, repoName, opts)
		if err != nil {
			return "", errors.Wrap(err, "fetching releases")
		}

		for _, release := range releases {
			if release.GetPrerelease() || release.GetDraft() {
				continue
			}

			tag := release.GetTagName()
			if strings.HasPrefix(tag, "cli-v") {
				return strings.TrimPrefix(tag, "cli-v"), nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return "", errors.New("no cli release was found")
}

// CheckVersion prints the current and the latest version. It reports
// whether the running version is the latest.
func CheckVersion(ctx context.SolarCtx, gh *github.Client) (bool, error) {
	log.Infof("current version is %s\n", ctx.Version)

	latest, err := LatestVersion(stdctx.Background(), gh)
	if err != nil {
		return false, errors.Wrap(err, "getting the latest version")
	}

	log.Infof("latest version is %s\n", latest)

	if latest == ctx.Version {
		log.Success("you are up-to-date\n\n")
		return true, nil
	}

	log.Infof("to upgrade, see https://github.com/%s/%s/releases\n", repoOwner, repoName)
	return false, nil
}

// Check asks to check for a new version when the last check is older than
// the upgrade interval
func Check(ctx context.SolarCtx, confirm prompt.Confirmer, gh *github.Client) error {
	shouldCheck, err := shouldCheckUpdate(ctx)
	if err != nil {
		return errors.Wrap(err, "checking if update should be checked")
	}
	if !shouldCheck {
		return nil
	}

	if err := touchLastUpgrade(ctx); err != nil {
		return errors.Wrap(err, "updating the last upgrade timestamp")
	}

	log.Plainf("\n")
	willCheck, err := confirm.Confirm("check for upgrade?")
	if err != nil {
		return errors.Wrap(err, "getting user confirmation")
	}
	if !willCheck {
		return nil
	}

	if _, err := CheckVersion(ctx, gh); err != nil {
		return errors.Wrap(err, "checking version")
	}

	return nil
}
