// Package cmd 提供 casefile 命令行入口.
package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/casefile/pkg/app"
	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/log"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           configs.AppName,
		Short:         "Patient case-file document lifecycle and audit service",
		Version:       configs.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApp(ctx, configPath)
			if err != nil {
				return err
			}

			return a.Run(ctx)
		},
	}
)

// loadConfig 供需要配置的子命令在执行前调用.
func loadConfig(*cobra.Command, []string) error {
	if err := configs.InitConfig(configPath); err != nil {
		return err
	}

	log.Init()

	return nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs", "config file or directory")
	rootCmd.AddCommand(serveCmd)

	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerAuditCommands()

	return rootCmd.ExecuteContext(context.Background())
}
