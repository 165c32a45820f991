package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/flarecloud/pkg/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "delete expired files once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.Setup(configPath)
		if err != nil {
			return err
		}

		res, err := app.Sweep(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		b, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal sweep result: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(b))

		return nil
	},
}

// registerSweepCommands 注册清理命令.
func registerSweepCommands() {
	rootCmd.AddCommand(sweepCmd)
}
