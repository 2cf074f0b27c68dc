package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"ordercleanup/backend/internal/api/handler"
	"ordercleanup/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "admin",
		Short:        "Operator tools for the Discord message deletion service",
		SilenceUsage: true,
	}
	root.AddCommand(tokenCmd())
	root.AddCommand(historyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with API_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("API_JWT_SECRET")
			if secret == "" {
				return errors.New("API_JWT_SECRET is not set")
			}
			token, err := handler.GenerateToken([]byte(secret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <order_id>",
		Short: "Show the audit trail of delete requests for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := os.Getenv("DATABASE_DSN")
			if dsn == "" {
				return errors.New("DATABASE_DSN is not set")
			}
			db, err := storage.OpenDatabase(dsn)
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}
			storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

			records, err := storageSvc.GetDeletionRecordsByOrderID(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No delete requests recorded for order %s.\n", args[0])
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tCHANNEL\tSUCCESS\tDELETED\tCHECKED\tMESSAGES\tERROR")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\t%s\t%s\n",
					r.CreatedAt.UTC().Format(time.RFC3339),
					r.ChannelID,
					r.Success,
					r.DeletedCount,
					r.MessagesChecked,
					strings.Join(r.MessageIDs, ","),
					r.Error,
				)
			}
			return w.Flush()
		},
	}
}
