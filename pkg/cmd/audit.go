package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/repository"
	"github.com/yeisme/casefile/pkg/internal/storage/db"
)

var (
	skipsLimit int

	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Audit trail inspection commands",
	}

	auditSkipsCmd = &cobra.Command{
		Use:     "skips",
		Short:   "list audit events that could not be recorded",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := db.New(cmd.Context(), &configs.GetConfig().DB)
			if err != nil {
				return err
			}
			defer client.Close()

			skips, err := repository.NewSkips(client.DB).ListSkips(cmd.Context(), skipsLimit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "AT\tDOCUMENT\tACTION\tREASON\tERROR")

			for _, s := range skips {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					s.OccurredAt.Format(time.RFC3339), s.DocumentID, s.Action, s.Reason, s.Error)
			}

			return w.Flush()
		},
	}
)

// registerAuditCommands 注册审计相关命令.
func registerAuditCommands() {
	auditSkipsCmd.Flags().IntVarP(&skipsLimit, "limit", "n", 50, "maximum number of rows")

	auditCmd.AddCommand(auditSkipsCmd)
	rootCmd.AddCommand(auditCmd)
}
