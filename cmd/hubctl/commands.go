package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reseller_hub/internal/config"
	"reseller_hub/internal/gateway"
	"reseller_hub/internal/logger"
	"reseller_hub/internal/migrations"
	"reseller_hub/internal/report"
	"reseller_hub/internal/repository"
	"reseller_hub/internal/services"
	"reseller_hub/internal/settlement"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed default data",
		Long: `Auto-migrates every table and creates the default operator account and
commission rate when they are missing. Existing data is never dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			return migrations.RunMigrations(cmd.Context(), db, migrations.Defaults{
				AdminEmail:     cfg.AdminEmail,
				AdminPassword:  cfg.AdminPassword,
				CommissionRate: cfg.CommissionRate,
			})
		},
	}
}

func newPayoutCmd(cfg *config.Config) *cobra.Command {
	payoutCmd := &cobra.Command{
		Use:   "payout",
		Short: "Weekly settlement figures",
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print this week's payout summary",
		Example: `  hubctl payout summary
  hubctl payout summary --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			payouts, closeDB, err := openPayouts(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			s, err := payouts.Summary(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			printSummary(cmd, s)
			return nil
		},
	}
	summaryCmd.Flags().Bool("json", false, "Print the summary as JSON")

	pdfCmd := &cobra.Command{
		Use:   "pdf",
		Short: "Write the settlement PDF for this week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("out")

			payouts, closeDB, err := openPayouts(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			var buf bytes.Buffer
			name, err := payouts.Document(cmd.Context(), time.Now(), &buf)
			if err != nil {
				return err
			}
			return writeFile(cmd, dir, name, buf.Bytes())
		},
	}
	pdfCmd.Flags().String("out", ".", "Directory to write the document to")

	payoutCmd.AddCommand(summaryCmd, pdfCmd)
	return payoutCmd
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:       "export <items|resellers|orders>",
		Short:     "Write a CSV backup of one table",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(gateway.Items), string(gateway.Resellers), string(gateway.Orders)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("out")
			rel, err := gateway.ParseRelation(args[0])
			if err != nil {
				return err
			}

			db, closeDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			var buf bytes.Buffer
			name, err := services.NewExportService(gateway.New(db)).Export(cmd.Context(), rel, time.Now().In(cfg.Location()), &buf)
			if errors.Is(err, report.ErrNoData) {
				fmt.Fprintf(cmd.OutOrStdout(), "No data to export in %s.\n", rel)
				return nil
			}
			if err != nil {
				return err
			}
			return writeFile(cmd, dir, name, buf.Bytes())
		},
	}
	exportCmd.Flags().String("out", ".", "Directory to write the backup to")
	return exportCmd
}

func newClearCmd(cfg *config.Config) *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear <items|resellers|orders>",
		Short: "Delete every row of a table",
		Long: `Deletes every row of the named table. Orders referencing cleared items or
resellers are deleted first. This cannot be undone; take an export first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase, _ := cmd.Flags().GetString("passphrase")
			rel, err := gateway.ParseRelation(args[0])
			if err != nil {
				return err
			}

			db, closeDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := services.NewMaintenanceService(gateway.New(db), cfg.AdminPassphrase).Clear(cmd.Context(), rel, passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s: %d rows, %d referencing orders.\n", res.Relation, res.Deleted, res.OrdersDeleted)
			return nil
		},
	}
	clearCmd.Flags().String("passphrase", "", "Admin passphrase (ADMIN_PASSPHRASE)")
	clearCmd.MarkFlagRequired("passphrase")
	return clearCmd
}

func openPayouts(cfg *config.Config) (services.PayoutService, func(), error) {
	db, closeDB, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := services.NewPayoutService(
		repository.NewOrderRepository(db),
		services.NewOrderPaidStore(gateway.New(db)),
		cfg.Location(),
	)
	return svc, closeDB, nil
}

func printSummary(cmd *cobra.Command, s settlement.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Week beginning:         %s\n", s.WeekStart.Format("2006-01-02"))
	fmt.Fprintf(out, "Settled profit (week):  Rs. %s\n", s.WeeklyProfit.StringFixed(2))
	fmt.Fprintf(out, "Realized hub profit:    Rs. %s\n", s.RealizedProfit.StringFixed(2))
	fmt.Fprintf(out, "Unpaid commissions:     Rs. %s\n", s.PendingCommission.StringFixed(2))
	fmt.Fprintf(out, "Past due: %d order(s), current week: %d order(s)\n", len(s.PastDue), len(s.CurrentWeek))
	for _, o := range s.PastDue {
		fmt.Fprintf(out, "  overdue  %s  %-12s  Rs. %s\n", o.Date.Format("2006-01-02"), o.OrderID, o.CommissionAmount.StringFixed(2))
	}
}

func writeFile(cmd *cobra.Command, dir, name string, data []byte) error {
	f, path, err := createOutput(dir, name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	log := logger.WithComponent("hubctl")
	log.Info().Str("path", path).Int("bytes", len(data)).Msg("file written")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

