package main

import (
	"fmt"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/money"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/report"

	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Category tree with rolled-up sums and budgets",
	RunE:  runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.services.Budgets.GetOverview()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle("BUDGET OVERVIEW"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Overview(rows, s.symbol()))

	total, err := s.services.Transactions.TotalAmount(models.PeriodCurrent)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Muted("  Current ledger total: "+money.Format(total, s.symbol())))
	return nil
}
