package main

import (
	"fmt"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/money"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/report"

	"github.com/spf13/cobra"
)

var completenessCmd = &cobra.Command{
	Use:   "completeness",
	Short: "Leaf categories of a kind still missing a budget",
	RunE:  runCompleteness,
}

func init() {
	addKindFlag(completenessCmd, "Category kind to check (income or expense)")
	rootCmd.AddCommand(completenessCmd)
}

func runCompleteness(cmd *cobra.Command, _ []string) error {
	kind, err := requireKind(flagKind)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.services.Budgets.CheckCompleteness(kind)
	if err != nil {
		return err
	}
	total, err := s.services.Budgets.TotalBudget(kind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle("BUDGET COMPLETENESS"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Completeness(kind, result))
	fmt.Fprintln(out, report.Muted(fmt.Sprintf("  Planned %s total: %s", kind, money.FormatAbs(total, s.symbol()))))
	return nil
}
