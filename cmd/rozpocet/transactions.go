package main

import (
	"fmt"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/pagination"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagPage     int
	flagPageSize int
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List ledger entries, newest first",
	RunE:  runTransactions,
}

func init() {
	transactionsCmd.Flags().StringVar(&flagPeriod, "period", string(models.PeriodCurrent), "Ledger period (current or historical)")
	transactionsCmd.Flags().IntVar(&flagPage, "page", 1, "Page to show")
	transactionsCmd.Flags().IntVar(&flagPageSize, "page-size", pagination.DefaultPageSize, "Entries per page")
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	period := models.Period(flagPeriod)
	if !period.IsValid() {
		return fmt.Errorf("invalid period %q (use current or historical)", flagPeriod)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	page, err := s.services.Transactions.ListTransactions(period, pagination.PageRequest{Page: flagPage, PageSize: flagPageSize})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle(fmt.Sprintf("TRANSACTIONS  %s", period)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Transactions(page.Data, s.symbol()))
	if page.TotalPages > 1 {
		fmt.Fprintln(out, report.Muted(fmt.Sprintf("  Page %d of %d (%d entries)", page.Page, page.TotalPages, page.TotalItems)))
	}
	return nil
}
