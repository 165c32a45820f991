// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/flarecloud/pkg/app"
	"github.com/yeisme/flarecloud/pkg/configs"
)

var (
	// configPath 配置文件或所在目录.
	configPath string
	// debug 打印配置时附带 viper 的调试输出.
	debug bool

	rootCmd = &cobra.Command{
		Use:           configs.AppName,
		Short:         "A small HTTP file store with time-based retention",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server and the retention scheduler",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose config output")

	rootCmd.AddCommand(serveCmd)

	registerSweepCommands()
	registerVersionCommands()
	registerConfigsCommands()
	registerMQCommands()
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}

	return a.Run()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
