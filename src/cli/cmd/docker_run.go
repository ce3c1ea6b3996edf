package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/dockwright/src/config"
	"github.com/sofmeright/dockwright/src/daemon"
	"github.com/sofmeright/dockwright/src/dockercli"
	"github.com/sofmeright/dockwright/src/output"
	"github.com/sofmeright/dockwright/src/runner"
	"github.com/sofmeright/dockwright/src/taskgraph"
	"github.com/sofmeright/dockwright/src/version"
)

var (
	drPush    bool
	drDryRun  bool
	drWorkers int
)

var dockerRunCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Run docker tasks",
	Long: `Run the named tasks and everything they depend on.

With no arguments, the build task of every declared image runs; pass
--push to push the results as well.`,
	RunE: runDockerRun,
}

func init() {
	dockerRunCmd.Flags().BoolVar(&drPush, "push", false, "push images after building (when no tasks are named)")
	dockerRunCmd.Flags().BoolVar(&drDryRun, "dry-run", false, "show what would run without executing")
	dockerRunCmd.Flags().IntVar(&drWorkers, "workers", 2, "max concurrent tasks")

	dockerCmd.AddCommand(dockerRunCmd)
}

func runDockerRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout
	start := time.Now()

	// Ambient configuration: properties file overlaid by environment,
	// then the daemon settings bridge.
	props, err := config.LoadProperties(propsFile)
	if err != nil {
		return fmt.Errorf("loading properties: %w", err)
	}
	props = props.WithEnv(os.Getenv)

	settings := daemon.FromEnvironment(os.Getenv, props)
	if settings.Credentials.URL == "" {
		settings.Credentials.URL = cfg.Docker.RegistryURL
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	docker := dockercli.New(settings, verbose)
	run := runner.New(docker, rootDir, drDryRun, verbose)

	eng, proj, _, err := loadGraph(run, drWorkers)
	if err != nil {
		return err
	}

	output.ContextBlock(w, []output.KV{
		{Key: "dockwright", Value: version.Version},
		{Key: "project", Value: proj.Name},
		{Key: "version", Value: proj.Version},
		{Key: "daemon", Value: valueOr(settings.URL, "(local)")},
	})

	targets := args
	if len(targets) == 0 {
		for _, img := range cfg.Docker.Images {
			if drPush {
				targets = append(targets, taskgraph.PushTaskName(img.Name))
			} else {
				targets = append(targets, taskgraph.BuildTaskName(img.Name))
			}
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no images declared")
	}

	if err := eng.Validate(); err != nil {
		return err
	}

	output.SectionStart(w, "dw_run", "Run")
	result, runErr := eng.Run(ctx, targets...)
	output.SectionEnd(w, "dw_run")
	if result == nil {
		return runErr
	}

	sec := output.NewSection(w, "Summary", time.Since(start), color)
	for _, t := range result.Tasks {
		detail := output.FormatElapsed(t.Duration)
		if t.Error != nil {
			detail = t.Error.Error()
		}
		output.SummaryRow(w, t.Name, t.Status, detail, color)
	}
	sec.Close()

	return runErr
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
