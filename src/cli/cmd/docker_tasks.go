package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/dockwright/src/engine"
	"github.com/sofmeright/dockwright/src/output"
	"github.com/sofmeright/dockwright/src/project"
	"github.com/sofmeright/dockwright/src/taskgraph"
)

var dockerTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the docker task graph",
	Long:  "List every task materialized from the declared images, with descriptions.",
	RunE:  runDockerTasks,
}

func init() {
	dockerCmd.AddCommand(dockerTasksCmd)
}

// loadGraph resolves project metadata and registers the task graph of
// every declared image with a fresh engine.
func loadGraph(exec engine.Executor, workers int) (*engine.Engine, *project.Meta, string, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, nil, "", fmt.Errorf("getting working directory: %w", err)
	}

	proj := project.Detect(rootDir)
	eng := engine.New(exec, workers)

	if err := taskgraph.RegisterAll(eng, cfg.Docker, proj, buildDir); err != nil {
		return nil, nil, "", fmt.Errorf("registering tasks: %w", err)
	}
	return eng, proj, rootDir, nil
}

func runDockerTasks(cmd *cobra.Command, args []string) error {
	eng, proj, _, err := loadGraph(nil, 1)
	if err != nil {
		return err
	}

	color := output.UseColor()
	w := os.Stdout

	sec := output.NewSection(w, "Tasks", 0, color)
	sec.Row("%-28s%s", "project", proj.Name+" "+proj.Version)
	sec.Separator()
	for _, task := range eng.Tasks() {
		sec.Row("%-28s%s", task.Name, output.Dimmed(task.Description, color))
	}
	sec.Close()

	return nil
}
