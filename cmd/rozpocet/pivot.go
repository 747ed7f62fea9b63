package main

import (
	"fmt"
	"strings"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/report"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"

	"github.com/spf13/cobra"
)

var (
	flagDimensions []string
	flagPeriod     string
)

var pivotCmd = &cobra.Command{
	Use:   "pivot",
	Short: "Group the ledger by up to five dimensions",
	Example: "  rozpocet pivot --dim category --dim responsible-person --period current\n" +
		"  rozpocet pivot --dim month,cost-center --kind expense",
	RunE: runPivot,
}

func init() {
	names := make([]string, 0, len(models.Dimensions()))
	for _, d := range models.Dimensions() {
		names = append(names, string(d))
	}
	pivotCmd.Flags().StringSliceVar(&flagDimensions, "dim", nil, "Grouping dimension, in order ("+strings.Join(names, ", ")+")")
	pivotCmd.Flags().StringVar(&flagPeriod, "period", string(models.PeriodCurrent), "Ledger period (current or historical)")
	addKindFlag(pivotCmd, "Only income or expense transactions")
	rootCmd.AddCommand(pivotCmd)
}

func runPivot(cmd *cobra.Command, _ []string) error {
	period := models.Period(flagPeriod)
	if !period.IsValid() {
		return fmt.Errorf("invalid period %q (use current or historical)", flagPeriod)
	}
	kind, err := parseKind(flagKind)
	if err != nil {
		return err
	}
	dims := make([]models.Dimension, 0, len(flagDimensions))
	for _, d := range flagDimensions {
		dims = append(dims, models.Dimension(strings.ToLower(strings.TrimSpace(d))))
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.services.Pivot.Pivot(services.PivotRequest{Dimensions: dims, Period: period, Kind: kind})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle(fmt.Sprintf("PIVOT  %s", period)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Pivot(result, s.symbol()))
	return nil
}
