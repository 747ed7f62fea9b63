package main

import (
	"fmt"
	"strings"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/calendar"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/report"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"

	"github.com/spf13/cobra"
)

var flagCategory string

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Month-over-month variance per category",
	RunE:  runPerformance,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare one month of the current ledger against the historical one",
	RunE:  runCompare,
}

func init() {
	performanceCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "Category name or id (default: every category)")
	addMonthFlag(performanceCmd)
	addKindFlag(performanceCmd, "Only income or expense categories")

	addMonthFlag(compareCmd)
	addKindFlag(compareCmd, "Category kind to compare (income or expense)")

	rootCmd.AddCommand(performanceCmd, compareCmd)
}

func checkMonth() error {
	if !calendar.ValidMonth(flagMonth) {
		return fmt.Errorf("invalid month %d (use 1-12)", flagMonth)
	}
	return nil
}

// findCategory matches an id exactly or a name case-insensitively.
func findCategory(s *session, ref string) (string, error) {
	categories, err := s.services.Categories.ListCategories()
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no category named %q", ref)
}

func runPerformance(cmd *cobra.Command, _ []string) error {
	if err := checkMonth(); err != nil {
		return err
	}
	kind, err := parseKind(flagKind)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var rows []services.Performance
	if flagCategory != "" {
		id, err := findCategory(s, flagCategory)
		if err != nil {
			return err
		}
		perf, err := s.services.Performance.Performance(id, flagMonth)
		if err != nil {
			return err
		}
		rows = []services.Performance{*perf}
	} else {
		rows, err = s.services.Performance.PerformanceAll(flagMonth, kind)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle(fmt.Sprintf("PERFORMANCE  Month %d", flagMonth)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Performance(rows, s.symbol()))
	return nil
}

func runCompare(cmd *cobra.Command, _ []string) error {
	if err := checkMonth(); err != nil {
		return err
	}
	kind, err := requireKind(flagKind)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.services.Performance.CompareMonth(flagMonth, kind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle(fmt.Sprintf("COMPARE  %s  Month %d", kind, flagMonth)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Comparison(flagMonth, rows, s.symbol()))
	return nil
}
