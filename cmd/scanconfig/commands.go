package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rancher/scanconfig/pkg/scan"
	"github.com/rancher/scanconfig/pkg/scanconfig"
	"github.com/urfave/cli"
	"sigs.k8s.io/yaml"
)

type action func(ctx context.Context, c *cli.Context, env *environment) error

func withEnvironment(fn action) func(*cli.Context) error {
	return func(c *cli.Context) error {
		ctx := context.Background()
		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}
		seen := len(env.notifications.Notifications())
		return env.failure(seen, fn(ctx, c, env))
	}
}

func showCommand() cli.Command {
	return cli.Command{
		Name:  "show",
		Usage: "Print the security scan config",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "output, o",
				Usage: "Output format: json or yaml",
				Value: "yaml",
			},
		},
		Action: withEnvironment(show),
	}
}

type configView struct {
	ID     string            `json:"id"`
	Exists bool              `json:"exists"`
	Skip   []string          `json:"skip"`
	Valid  bool              `json:"valid"`
	Error  string            `json:"error,omitempty"`
	Data   map[string]string `json:"data,omitempty"`
}

func show(ctx context.Context, c *cli.Context, env *environment) error {
	cm, err := env.sync.SecurityScanConfig(ctx)
	if err != nil {
		return err
	}

	view := configView{
		ID:     scanconfig.ID,
		Exists: cm != nil,
		Skip:   scanconfig.SkipList(cm),
		Valid:  true,
	}
	if cm != nil {
		view.Data = cm.Data
		if err := scanconfig.ValidateData(cm.Data); err != nil {
			view.Valid = false
			view.Error = err.Error()
		}
	}

	var out []byte
	switch format := c.String("output"); format {
	case "json":
		out, err = json.MarshalIndent(view, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(view)
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(out)
	return err
}

func skipCommand() cli.Command {
	return cli.Command{
		Name:  "skip",
		Usage: "Change the list of skipped checks",
		Subcommands: []cli.Command{
			{
				Name:      "set",
				Usage:     "Replace the skip list",
				ArgsUsage: "[CHECK_ID...]",
				Action: withEnvironment(func(ctx context.Context, c *cli.Context, env *environment) error {
					return env.sync.ApplySkipList(ctx, env.scope, dedup(c.Args()))
				}),
			},
			{
				Name:      "add",
				Usage:     "Add checks to the skip list",
				ArgsUsage: "CHECK_ID...",
				Action: withEnvironment(func(ctx context.Context, c *cli.Context, env *environment) error {
					current, err := env.sync.SkipList(ctx)
					if err != nil {
						return err
					}
					return env.sync.ApplySkipList(ctx, env.scope, dedup(append(current, c.Args()...)))
				}),
			},
			{
				Name:      "remove",
				Usage:     "Remove checks from the skip list",
				ArgsUsage: "CHECK_ID...",
				Action: withEnvironment(func(ctx context.Context, c *cli.Context, env *environment) error {
					current, err := env.sync.SkipList(ctx)
					if err != nil {
						return err
					}
					remove := map[string]bool{}
					for _, id := range c.Args() {
						remove[id] = true
					}
					kept := []string{}
					for _, id := range current {
						if !remove[id] {
							kept = append(kept, id)
						}
					}
					return env.sync.ApplySkipList(ctx, env.scope, kept)
				}),
			},
		},
	}
}

func dedup(ids []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

func editCommand() cli.Command {
	return cli.Command{
		Name:  "edit",
		Usage: "Replace the stored config with the contents of a file",
		Description: "By default the file is the config document itself. With --data it is a\n" +
			"YAML or JSON map holding every data key of the config map.",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "file, f",
				Usage: "File to read",
			},
			cli.BoolFlag{
				Name:  "data",
				Usage: "Treat the file as the full data map",
			},
		},
		Action: withEnvironment(edit),
	}
}

func edit(ctx context.Context, c *cli.Context, env *environment) error {
	path := c.String("file")
	if path == "" {
		return errors.New("--file is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data := map[string]string{}
	if c.Bool("data") {
		if err := yaml.Unmarshal(content, &data); err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
	} else {
		data[scanconfig.FileKey] = string(content)
	}
	return env.sync.ApplyEdit(ctx, env.scope, data)
}

func validateCommand() cli.Command {
	return cli.Command{
		Name:  "validate",
		Usage: "Check that the stored config is well formed",
		Action: withEnvironment(func(ctx context.Context, c *cli.Context, env *environment) error {
			if err := env.sync.Validate(ctx, env.scope); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "ok")
			return nil
		}),
	}
}

func runScanCommand() cli.Command {
	return cli.Command{
		Name:  "run-scan",
		Usage: "Start a CIS scan of the cluster",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "no-validate",
				Usage: "Start the scan even when the stored config is malformed",
			},
		},
		Action: withEnvironment(func(ctx context.Context, c *cli.Context, env *environment) error {
			if env.scanner == nil {
				return errors.Errorf("run-scan requires the %s backend", backendNorman)
			}
			runner := scan.NewRunner(env.scanner, env.sync, env.notifications, env.translator)
			runner.RequireValidConfig = !c.Bool("no-validate")
			if err := runner.Run(ctx, env.scope); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "scan requested for cluster %s\n", env.scope.ClusterID)
			return nil
		}),
	}
}
