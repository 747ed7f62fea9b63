package main

import (
	"fmt"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/report"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var flagMaxDistance int

var unassignedCmd = &cobra.Command{
	Use:   "unassigned",
	Short: "Keys without a category, with the closest existing leaves",
	RunE:  runUnassigned,
}

var reapplyCmd = &cobra.Command{
	Use:   "reapply",
	Short: "Link unassigned transactions to categories named by their key",
	RunE:  runReapply,
}

func init() {
	unassignedCmd.Flags().IntVar(&flagMaxDistance, "max-distance", 3, "Largest edit distance for category suggestions")
	rootCmd.AddCommand(unassignedCmd, reapplyCmd)
}

func runUnassigned(cmd *cobra.Command, _ []string) error {
	if flagMaxDistance < 0 {
		return fmt.Errorf("--max-distance must not be negative")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	keys, err := s.services.Resolver.ListUnassignedKeys()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderTitle("UNASSIGNED KEYS"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.UnassignedKeys(keys))
	if len(keys) == 0 {
		return nil
	}

	suggestions, err := s.services.Resolver.SuggestCategories(flagMaxDistance)
	if err != nil {
		return err
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.RenderTitle("SUGGESTIONS"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.Suggestions(suggestions))
	}
	return nil
}

func runReapply(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	linked, err := s.services.Resolver.ReapplyAll()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n  Linked %d transaction(s).\n", linked)
	return nil
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the cached sums of every leaf category",
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.manager.DB().Transaction(func(tx *gorm.DB) error {
		return s.services.Metrics.RefreshAll(tx)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\n  Category sums rebuilt.")
	return nil
}
