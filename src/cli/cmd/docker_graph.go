package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sofmeright/dockwright/src/output"
)

var dockerGraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show task dependencies",
	Long:  "Print every task with the tasks it depends on.",
	RunE:  runDockerGraph,
}

func init() {
	dockerCmd.AddCommand(dockerGraphCmd)
}

func runDockerGraph(cmd *cobra.Command, args []string) error {
	eng, _, _, err := loadGraph(nil, 1)
	if err != nil {
		return err
	}

	color := output.UseColor()
	w := os.Stdout

	sec := output.NewSection(w, "Graph", 0, color)
	for _, task := range eng.Tasks() {
		deps := "(none)"
		if len(task.DependsOn) > 0 {
			deps = strings.Join(task.DependsOn, ", ")
		}
		sec.Row("%-28s← %s", task.Name, output.Dimmed(deps, color))
	}
	sec.Close()

	return nil
}
