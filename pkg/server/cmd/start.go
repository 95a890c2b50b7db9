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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/server/app"
	"github.com/solarcareer/solarcareer/pkg/server/buildinfo"
	"github.com/solarcareer/solarcareer/pkg/server/config"
	"github.com/solarcareer/solarcareer/pkg/server/controllers"
	"github.com/solarcareer/solarcareer/pkg/server/database"
	"github.com/solarcareer/solarcareer/pkg/server/jobs"
	"github.com/solarcareer/solarcareer/pkg/server/log"
	mw "github.com/solarcareer/solarcareer/pkg/server/middleware"
)

// newHandler wires the routes, metrics and rate limiter of the app
func newHandler(a *app.App, cfg config.Config) (http.Handler, func(), error) {
	metrics := mw.NewMetrics(a.Hub.Count)

	var limiter *mw.RateLimiter
	if !cfg.DisableRateLimit {
		limiter = mw.NewRateLimiter(mw.DefaultRateLimitPerSecond, mw.DefaultRateLimitBurst)
		limiter.OnReject = func(string) {
			metrics.RateLimited.Inc()
		}
	}

	ctl := controllers.New(a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(a, ctl),
		Controllers: ctl,
		Metrics:     metrics,
		Limiter:     limiter,
	}

	h, err := controllers.NewRouter(a, rc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "initializing router")
	}

	cleanup := func() {
		if limiter != nil {
			limiter.Close()
		}
	}

	return h, cleanup, nil
}

func startCmd(args []string) {
	fs := setupFlagSet("start", "solarcareer-server start")

	envFile := fs.String("envFile", ".env", "Path to a dotenv file loaded before reading the environment")
	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	db := addDBFlags(fs)
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	sessionTTL := fs.Duration("sessionTTL", 0, "Lifetime of a session (env: SESSION_TTL, default: 2400h)")
	maxPollWait := fs.Duration("maxPollWait", 0, "Longest a read may wait for changes (env: MAX_POLL_WAIT, default: 30s)")
	maintenance := fs.String("maintenanceSchedule", "", "Cron schedule of the database maintenance (env: MAINTENANCE_SCHEDULE, default: @every 5m)")
	disableRateLimit := fs.Bool("disableRateLimit", false, "Disable the per-IP rate limit (env: DisableRateLimit)")

	fs.Parse(args)

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	p := db.params()
	p.Port = *port
	p.LogLevel = *logLevel
	p.SessionTTL = *sessionTTL
	p.MaxPollWait = *maxPollWait
	p.MaintenanceSchedule = *maintenance
	p.DisableRateLimit = *disableRateLimit

	cfg, err := config.New(p)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}
	log.SetLevel(level)

	if err := serve(cfg); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func serve(cfg config.Config) error {
	a, err := initApp(cfg)
	if err != nil {
		return err
	}
	defer database.Close(a.DB)

	runner, err := jobs.NewRunner(a.DB, a.Clock)
	if err != nil {
		return err
	}
	if cfg.MaintenanceSchedule != "" {
		if err := runner.Schedule(cfg.MaintenanceSchedule); err != nil {
			return err
		}
		defer runner.Stop()
	}

	h, cleanup, err := newHandler(&a, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
		"driver":  cfg.DBDriver,
	}).Info("SolarCareer server starting")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listening")
	case <-ctx.Done():
	}

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.MaxPollWait+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}

	return nil
}
