package services

import (
	"testing"
	"time"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/testutil"
)

func TestNewRatio(t *testing.T) {
	tests := []struct {
		name       string
		current    int64
		historical int64
		want       Ratio
	}{
		{"both_zero", 0, 0, Ratio{Kind: RatioPercent}},
		{"no_baseline", 150, 0, Ratio{Kind: RatioNew}},
		{"half", 50, 100, Ratio{Kind: RatioPercent, Percent: 50}},
		{"double", 200, 100, Ratio{Kind: RatioPercent, Percent: 200}},
		{"dropped", 0, 100, Ratio{Kind: RatioPercent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRatio(tt.current, tt.historical); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRatioWorse(t *testing.T) {
	newRatio := Ratio{Kind: RatioNew}
	high := Ratio{Kind: RatioPercent, Percent: 1e9}
	low := Ratio{Kind: RatioPercent, Percent: 10}

	if !newRatio.Worse(high) {
		t.Error("expected new to outrank any percentage")
	}
	if high.Worse(newRatio) {
		t.Error("expected no percentage to outrank new")
	}
	if newRatio.Worse(newRatio) {
		t.Error("expected new not to outrank itself")
	}
	if !high.Worse(low) || low.Worse(high) {
		t.Error("expected numeric comparison between percentages")
	}
	if newRatio.String() != "new" || low.String() != "10,0 %" {
		t.Errorf("unexpected rendering %q, %q", newRatio.String(), low.String())
	}
}

func TestPerformance(t *testing.T) {
	t.Run("own_total_and_worst", func(t *testing.T) {
		e := newEngine(t)
		root := mustCategory(t, e, "Living", models.CategoryKindExpense, nil, true)
		rent := mustCategory(t, e, "Rent", models.CategoryKindExpense, root, false)
		food := mustCategory(t, e, "Food", models.CategoryKindExpense, root, false)
		mustAdd(t, e, input("Rent", -1000, models.PeriodHistorical))
		mustAdd(t, e, input("Rent", -500, models.PeriodCurrent))
		mustAdd(t, e, input("Food", -100, models.PeriodHistorical))
		mustAdd(t, e, input("Food", -300, models.PeriodCurrent))
		mustAdd(t, e, inputInMonth("Food", -9999, models.PeriodCurrent, time.April))

		p, err := e.performance.Performance(rent.ID, 3)
		testutil.AssertNoError(t, err)
		if p.Own.Percent != 50 || p.Total.Percent != 50 || p.Worst.Percent != 50 {
			t.Errorf("rent: unexpected %+v", p)
		}

		p, err = e.performance.Performance(food.ID, 3)
		testutil.AssertNoError(t, err)
		if p.Total.Percent != 300 {
			t.Errorf("food: expected 300 %%, got %+v", p.Total)
		}

		p, err = e.performance.Performance(root.ID, 3)
		testutil.AssertNoError(t, err)
		if p.Historical != 1100 || p.Current != 800 {
			t.Errorf("root: expected (1100, 800), got (%d, %d)", p.Historical, p.Current)
		}
		if p.Own.Kind != RatioPercent || p.Own.Percent != 0 {
			t.Errorf("root: expected own 0, got %+v", p.Own)
		}
		if p.Worst.Percent != 300 {
			t.Errorf("root: expected worst 300 %%, got %+v", p.Worst)
		}
	})

	t.Run("new_dominates_ancestors", func(t *testing.T) {
		e := newEngine(t)
		root := mustCategory(t, e, "Living", models.CategoryKindExpense, nil, true)
		mid := mustCategory(t, e, "Home", models.CategoryKindExpense, root, true)
		mustCategory(t, e, "Rent", models.CategoryKindExpense, root, false)
		mustCategory(t, e, "Gadgets", models.CategoryKindExpense, mid, false)
		mustAdd(t, e, input("Rent", -10000, models.PeriodHistorical))
		mustAdd(t, e, input("Rent", -100, models.PeriodCurrent))
		mustAdd(t, e, input("Gadgets", -150, models.PeriodCurrent))

		p, err := e.performance.Performance(root.ID, 3)
		testutil.AssertNoError(t, err)

		if p.Total.IsNew() {
			t.Errorf("expected a numeric total for the root, got %+v", p.Total)
		}
		if !p.Worst.IsNew() {
			t.Errorf("expected worst to be new, got %+v", p.Worst)
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		e := newEngine(t)

		p, err := e.performance.Performance("missing", 3)
		testutil.AssertNoError(t, err)
		if p.Total.Kind != RatioPercent || p.Total.Percent != 0 {
			t.Errorf("expected zero ratio, got %+v", p.Total)
		}
	})

	t.Run("invalid_month", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.performance.Performance("any", 13)
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})

	t.Run("cycle", func(t *testing.T) {
		e := newEngine(t)
		a := testutil.CreateTestCategoryWithName(t, e.db, "A", models.CategoryKindExpense, nil, true)
		b := testutil.CreateTestCategoryWithName(t, e.db, "B", models.CategoryKindExpense, &a.ID, true)
		e.db.Model(a).Update("parent_id", b.ID)

		_, err := e.performance.Performance(a.ID, 3)
		testutil.AssertAppError(t, err, "CORRUPT_HIERARCHY")
	})
}

func TestPerformanceAll(t *testing.T) {
	e := newEngine(t)
	root := mustCategory(t, e, "Living", models.CategoryKindExpense, nil, true)
	mustCategory(t, e, "Rent", models.CategoryKindExpense, root, false)
	mustCategory(t, e, "Salary", models.CategoryKindIncome, nil, false)
	mustAdd(t, e, input("Rent", -100, models.PeriodCurrent))

	all, err := e.performance.PerformanceAll(3, nil)
	testutil.AssertNoError(t, err)
	if len(all) != 3 || all[0].Name != "Living" || all[1].Name != "Rent" || all[1].Depth != 1 {
		t.Fatalf("unexpected order %+v", all)
	}

	kind := models.CategoryKindIncome
	income, err := e.performance.PerformanceAll(3, &kind)
	testutil.AssertNoError(t, err)
	if len(income) != 1 || income[0].Name != "Salary" {
		t.Errorf("expected only Salary, got %+v", income)
	}
}

func TestCompareMonth(t *testing.T) {
	e := newEngine(t)
	mustCategory(t, e, "Rent", models.CategoryKindExpense, nil, false)
	mustCategory(t, e, "Food", models.CategoryKindExpense, nil, false)
	mustCategory(t, e, "Fun", models.CategoryKindExpense, nil, false)
	mustCategory(t, e, "Idle", models.CategoryKindExpense, nil, false)
	mustCategory(t, e, "Salary", models.CategoryKindIncome, nil, false)
	mustAdd(t, e, input("Rent", -900, models.PeriodHistorical))
	mustAdd(t, e, input("Rent", -900, models.PeriodCurrent))
	mustAdd(t, e, input("Food", -300, models.PeriodHistorical))
	mustAdd(t, e, input("Food", -900, models.PeriodCurrent))
	mustAdd(t, e, input("Fun", -50, models.PeriodHistorical))
	mustAdd(t, e, inputInMonth("Idle", -50, models.PeriodCurrent, time.June))
	mustAdd(t, e, input("Salary", 5000, models.PeriodCurrent))

	rows, err := e.performance.CompareMonth(3, models.CategoryKindExpense)
	testutil.AssertNoError(t, err)

	want := []MonthComparison{
		{Name: "Rent", Historical: 900, Current: 900},
		{Name: "Food", Historical: 300, Current: 900},
		{Name: "Fun", Historical: 50, Current: 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for i, w := range want {
		got := rows[i]
		if got.Name != w.Name || got.Historical != w.Historical || got.Current != w.Current {
			t.Errorf("row %d: expected %+v, got %+v", i, w, got)
		}
	}

	_, err = e.performance.CompareMonth(0, models.CategoryKindExpense)
	testutil.AssertAppError(t, err, "INVALID_DATE")
}
