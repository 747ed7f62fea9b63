package database

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/config"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

func TestDSN(t *testing.T) {
	pg := &Config{
		Driver: config.DriverPostgres, Host: "db", Port: "5432",
		User: "u", Password: "p@ss", DBName: "rozpocet", SSLMode: "disable",
	}
	if got := pg.DSN(); !strings.Contains(got, "host=db") || !strings.Contains(got, "dbname=rozpocet") {
		t.Errorf("unexpected postgres DSN %q", got)
	}
	if got := pg.MigrationURL(); got != "postgres://u:p%40ss@db:5432/rozpocet?sslmode=disable" {
		t.Errorf("unexpected postgres migration URL %q", got)
	}

	lite := &Config{Driver: config.DriverSQLite, Path: "data/rozpocet.db"}
	if got := lite.DSN(); got != "data/rozpocet.db?_foreign_keys=on" {
		t.Errorf("unexpected sqlite DSN %q", got)
	}
	if got := lite.MigrationURL(); !strings.HasPrefix(got, "sqlite3://data/rozpocet.db") {
		t.Errorf("unexpected sqlite migration URL %q", got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		t.Run(driver, func(t *testing.T) {
			files, err := Migrations(driver)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ups, err := fs.Glob(files, "*.up.sql")
			if err != nil {
				t.Fatal(err)
			}
			downs, _ := fs.Glob(files, "*.down.sql")
			if len(ups) != 3 || len(downs) != len(ups) {
				t.Errorf("expected 3 paired migrations, got %d up and %d down", len(ups), len(downs))
			}
		})
	}

	if _, err := Migrations("mysql"); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

func TestManagerSQLite(t *testing.T) {
	cfg := &Config{
		Driver:          config.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "rozpocet.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Close()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := m.RunMigrations(); err != nil {
		t.Fatalf("second run should be a no-op, got %v", err)
	}

	category := &models.Category{Name: "Rent", Kind: models.CategoryKindExpense}
	if err := m.DB().Create(category).Error; err != nil {
		t.Fatalf("insert into migrated schema failed: %v", err)
	}
	txn := &models.Transaction{
		Date:       time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		Key:        "Rent",
		Amount:     -900,
		Period:     models.PeriodCurrent,
		CategoryID: &category.ID,
	}
	if err := m.DB().Create(txn).Error; err != nil {
		t.Fatalf("insert transaction failed: %v", err)
	}
	if err := m.DB().Create(&models.Budget{CategoryID: category.ID, PlannedAmount: -1000}).Error; err != nil {
		t.Fatalf("insert budget failed: %v", err)
	}

	var month int
	m.DB().Model(&models.Transaction{}).Select("month").Where("id = ?", txn.ID).Scan(&month)
	if month != 7 {
		t.Errorf("expected stored month 7, got %d", month)
	}
}

func TestNewManagerUnknownDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "mysql"}); err == nil {
		t.Error("expected an error")
	}
}
