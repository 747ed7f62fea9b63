package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/config"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/database"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"

	"github.com/spf13/cobra"
)

var (
	flagSymbol string
	flagKind   string
	flagMonth  int
)

var rootCmd = &cobra.Command{
	Use:           "rozpocet",
	Short:         "Budget reports over the ledger",
	Long:          "Review the category tree, budgets and month-over-month performance of the configured ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOverview,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSymbol, "symbol", "", "Currency symbol (defaults to CURRENCY_SYMBOL)")
}

// session is an open database with its wired services.
type session struct {
	cfg      *config.Config
	manager  *database.Manager
	services *services.Services
}

func (s *session) Close() {
	if err := s.manager.Close(); err != nil {
		logger.Get().Warnw("failed to close database", "error", err)
	}
	logger.Sync()
}

func (s *session) symbol() string {
	if flagSymbol != "" {
		return flagSymbol
	}
	return s.cfg.CurrencySymbol
}

// openSession is the shared wiring used by all commands: the same config,
// database and migrations as the API server.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Env)

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := manager.RunMigrations(); err != nil {
		_ = manager.Close()
		return nil, err
	}
	return &session{cfg: cfg, manager: manager, services: services.NewServices(manager.DB())}, nil
}

func addKindFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&flagKind, "kind", "k", "", usage)
}

func addMonthFlag(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagMonth, "month", "m", int(time.Now().Month()), "Month to review (1-12)")
}

// parseKind returns nil for an empty flag.
func parseKind(text string) (*models.CategoryKind, error) {
	if text == "" {
		return nil, nil
	}
	kind := models.CategoryKind(strings.ToLower(text))
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid kind %q (use income or expense)", text)
	}
	return &kind, nil
}

func requireKind(text string) (models.CategoryKind, error) {
	kind, err := parseKind(text)
	if err != nil {
		return "", err
	}
	if kind == nil {
		return "", fmt.Errorf("--kind is required (income or expense)")
	}
	return *kind, nil
}
