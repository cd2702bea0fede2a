package main

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rancher/scanconfig/pkg/metrics"
	"github.com/rancher/scanconfig/pkg/settings"
	"github.com/urfave/cli"
)

// settingFlags maps string flags onto the settings they fill in.
var settingFlags = map[string]settings.Setting{
	"server":              settings.ServerURL,
	"token":               settings.Token,
	"cluster":             settings.ClusterID,
	"backend":             settings.Backend,
	"kubeconfig":          settings.Kubeconfig,
	"system-project-link": settings.SystemProjectLink,
	"locale":              settings.Locale,
	"load-timeout":        settings.LoadTimeout,
}

func settingFlag(name, usage string) cli.StringFlag {
	s := settingFlags[name]
	return cli.StringFlag{
		Name:   name,
		Usage:  usage,
		EnvVar: s.EnvVar(),
		Value:  s.Default,
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "scanconfig"
	app.Usage = "Manage the CIS security scan configuration of a cluster"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		settingFlag("server", "Rancher server URL"),
		settingFlag("token", "Rancher API token"),
		cli.BoolFlag{
			Name:   "insecure",
			Usage:  "Skip verification of the server certificate",
			EnvVar: settings.Insecure.EnvVar(),
		},
		settingFlag("cluster", "ID of the cluster to configure"),
		settingFlag("backend", "Where the config map is stored: norman or kube"),
		cli.StringFlag{
			Name:   "kubeconfig",
			Usage:  "Kubeconfig of the downstream cluster (kube backend)",
			EnvVar: settings.Kubeconfig.EnvVar() + ",KUBECONFIG",
		},
		settingFlag("system-project-link", "Self link of the cluster's System project (kube backend)"),
		settingFlag("locale", "Language of notification titles"),
		settingFlag("load-timeout", "How long to wait for config maps to load"),
		cli.BoolFlag{
			Name:   "debug",
			Usage:  "Enable debug logging",
			EnvVar: "CATTLE_DEBUG,RANCHER_DEBUG",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "Write logs to a rotated file instead of stderr",
		},
	}
	app.Before = before
	app.Commands = []cli.Command{
		showCommand(),
		skipCommand(),
		editCommand(),
		validateCommand(),
		runScanCommand(),
		watchCommand(),
	}
	return app
}

func before(c *cli.Context) error {
	setupLogging(c.Bool("debug"), c.String("log-file"))
	metrics.Register(prometheus.DefaultRegisterer)

	provider := settings.NewMapProvider()
	for name, s := range settingFlags {
		if err := provider.Set(s.Name, c.String(name)); err != nil {
			return err
		}
	}
	if err := provider.Set(settings.Insecure.Name, strconv.FormatBool(c.Bool("insecure"))); err != nil {
		return err
	}
	return settings.SetProvider(provider)
}
