package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rancher/scanconfig/pkg/scanconfig"
	"github.com/rancher/scanconfig/pkg/settings"
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func watchCommand() cli.Command {
	return cli.Command{
		Name:  "watch",
		Usage: "Reload the config on a schedule and report every change",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   "refresh-cron",
				Usage:  "Cron schedule for reloading config maps",
				EnvVar: settings.RefreshCron.EnvVar(),
				Value:  settings.RefreshCron.Default,
			},
			cli.StringFlag{
				Name:   "metrics-listen",
				Usage:  "Address to serve /metrics on, for example :9100",
				EnvVar: settings.MetricsListen.EnvVar(),
			},
		},
		Action: withEnvironment(watch),
	}
}

func watch(ctx context.Context, c *cli.Context, env *environment) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	schedule, err := cron.ParseStandard(c.String("refresh-cron"))
	if err != nil {
		return errors.Wrap(err, "parsing refresh cron")
	}
	refresher := cron.New()
	refresher.Schedule(schedule, cron.FuncJob(func() {
		logrus.Debugf("[scanconfig] reloading config maps for cluster %s", env.scope.ClusterID)
		env.configMaps.Load(ctx, env.fetch)
	}))
	refresher.Start()
	defer refresher.Stop()

	if addr := c.String("metrics-listen"); addr != "" {
		server := metricsServer(addr)
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.Errorf("[scanconfig] metrics server stopped: %v", err)
			}
		}()
		defer server.Close()
	}

	newReporter(c.App.Writer, time.Second).run(ctx, env.sync.Locator())
	return nil
}

func metricsServer(addr string) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// reporter prints the state of the config after it settles. Nothing is written
// once run has returned.
type reporter struct {
	out      io.Writer
	debounce func(func())

	mu      sync.Mutex
	stopped bool
}

func newReporter(out io.Writer, quiet time.Duration) *reporter {
	return &reporter{
		out:      out,
		debounce: debounce.New(quiet),
	}
}

func (r *reporter) run(ctx context.Context, locator *scanconfig.Locator) {
	for result := range locator.Watch(ctx) {
		result := result
		r.debounce(func() {
			r.print(result)
		})
	}

	r.debounce(func() {})
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
}

func (r *reporter) print(result scanconfig.LocateResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	fmt.Fprintln(r.out, describe(result))
}

func describe(result scanconfig.LocateResult) string {
	switch {
	case result.Err != nil:
		return fmt.Sprintf("unavailable: %v", result.Err)
	case result.ConfigMap == nil:
		return fmt.Sprintf("%s not created", scanconfig.ID)
	}
	skip := scanconfig.SkipList(result.ConfigMap)
	if err := scanconfig.ValidateData(result.ConfigMap.Data); err != nil {
		return fmt.Sprintf("%s invalid (%d checks skipped): %v", scanconfig.ID, len(skip), err)
	}
	return fmt.Sprintf("%s valid (%d checks skipped)", scanconfig.ID, len(skip))
}
