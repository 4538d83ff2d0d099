package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/storage/kv"
	"github.com/yeisme/casefile/pkg/internal/storage/mq"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-value backends used for the display-name cache",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list registered kv backends, marking the configured one",
		Aliases: []string{"list", "l"},
		PreRunE: loadConfig,
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0)
			for _, t := range kv.GetRegisteredKVTypes() {
				names = append(names, string(t))
			}

			printBackends(cmd.OutOrStdout(), "kv", names, configs.GetConfig().KV.Type)
		},
	}

	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue backends used for audit event fan-out",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list registered mq backends, marking the configured one",
		Aliases: []string{"list", "l"},
		PreRunE: loadConfig,
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0)
			for _, t := range mq.GetRegisteredTypes() {
				names = append(names, string(t))
			}

			cfg := configs.GetConfig()

			active := string(cfg.MQ.Type)
			if !cfg.Events.Enabled {
				active = ""
			}

			printBackends(cmd.OutOrStdout(), "mq", names, active)
		},
	}
)

func printBackends(w io.Writer, kind string, names []string, active string) {
	fmt.Fprintf(w, "Registered %s backends:\n", kind)

	for _, n := range names {
		mark := " "
		if n == active {
			mark = "*"
		}

		fmt.Fprintf(w, " %s %s\n", mark, n)
	}
}

// registerKVCommands 注册 kv 子命令.
func registerKVCommands() {
	kvCmd.AddCommand(kvListCmd)
	rootCmd.AddCommand(kvCmd)
}

// registerMQCommands 注册 mq 子命令.
func registerMQCommands() {
	mqCmd.AddCommand(mqListCmd)
	rootCmd.AddCommand(mqCmd)
}
