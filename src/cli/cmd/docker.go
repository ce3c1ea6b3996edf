package cmd

import (
	"github.com/spf13/cobra"
)

var (
	buildDir  string
	propsFile string
)

var dockerCmd = &cobra.Command{
	Use:   "docker",
	Short: "Docker image commands",
	Long:  "Inspect and run the docker task graph declared in the configuration.",
}

func init() {
	dockerCmd.PersistentFlags().StringVar(&buildDir, "build-dir", "build", "build output directory")
	dockerCmd.PersistentFlags().StringVar(&propsFile, "properties", "", "properties file (default: dockwright.properties.toml)")
	rootCmd.AddCommand(dockerCmd)
}
