package services

import (
	"testing"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/testutil"
)

func TestSetLeafBudget(t *testing.T) {
	t.Run("upsert", func(t *testing.T) {
		e := newEngine(t)
		leaf := testutil.CreateTestCategory(t, e.db, models.CategoryKindExpense)

		_, err := e.budgets.SetLeafBudget(leaf.ID, -1000)
		testutil.AssertNoError(t, err)
		_, err = e.budgets.SetLeafBudget(leaf.ID, -1500)
		testutil.AssertNoError(t, err)

		own, err := e.budgets.GetOwnBudget(leaf.ID)
		testutil.AssertNoError(t, err)
		if own != -1500 {
			t.Errorf("expected -1500, got %d", own)
		}
		var count int64
		e.db.Model(&models.Budget{}).Count(&count)
		if count != 1 {
			t.Errorf("expected a single budget row, got %d", count)
		}
	})

	t.Run("aggregate", func(t *testing.T) {
		e := newEngine(t)
		agg := testutil.CreateTestAggregate(t, e.db, models.CategoryKindExpense)

		_, err := e.budgets.SetLeafBudget(agg.ID, -1000)
		testutil.AssertAppError(t, err, "NOT_A_LEAF")
	})

	t.Run("unknown", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.budgets.SetLeafBudget("missing", 1)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetEffective(t *testing.T) {
	t.Run("leaf_verbatim", func(t *testing.T) {
		e := newEngine(t)
		leaf := mustCategory(t, e, "Food", models.CategoryKindExpense, nil, false)
		mustAdd(t, e, input("Food", -70, models.PeriodHistorical))
		mustAdd(t, e, input("Food", -30, models.PeriodCurrent))
		_, err := e.budgets.SetLeafBudget(leaf.ID, -400)
		testutil.AssertNoError(t, err)

		eff, err := e.budgets.GetEffective(leaf.ID)
		testutil.AssertNoError(t, err)
		want := EffectiveValues{SumPast: 70, SumCurrent: 30, Budget: -400}
		if *eff != want {
			t.Errorf("expected %+v, got %+v", want, *eff)
		}
	})

	t.Run("recursive_rollup", func(t *testing.T) {
		e := newEngine(t)
		root := mustCategory(t, e, "Living", models.CategoryKindExpense, nil, true)
		home := mustCategory(t, e, "Home", models.CategoryKindExpense, root, true)
		rent := mustCategory(t, e, "Rent", models.CategoryKindExpense, home, false)
		energy := mustCategory(t, e, "Energy", models.CategoryKindExpense, home, false)
		food := mustCategory(t, e, "Food", models.CategoryKindExpense, root, false)
		mustAdd(t, e, input("Rent", -900, models.PeriodHistorical))
		mustAdd(t, e, input("Energy", -100, models.PeriodCurrent))
		mustAdd(t, e, input("Food", -50, models.PeriodCurrent))
		for id, amount := range map[string]int64{rent.ID: -1000, energy.ID: -200, food.ID: -300} {
			_, err := e.budgets.SetLeafBudget(id, amount)
			testutil.AssertNoError(t, err)
		}

		eff, err := e.budgets.GetEffective(root.ID)
		testutil.AssertNoError(t, err)
		want := EffectiveValues{SumPast: 900, SumCurrent: 150, Budget: -1500}
		if *eff != want {
			t.Errorf("expected %+v, got %+v", want, *eff)
		}
		assertRollup(t, e)
	})

	t.Run("stray_aggregate_row_ignored", func(t *testing.T) {
		e := newEngine(t)
		agg := mustCategory(t, e, "Home", models.CategoryKindExpense, nil, true)
		leaf := mustCategory(t, e, "Rent", models.CategoryKindExpense, agg, false)
		_, err := e.budgets.SetLeafBudget(leaf.ID, -100)
		testutil.AssertNoError(t, err)
		testutil.SetTestBudget(t, e.db, agg.ID, -99999)

		eff, err := e.budgets.GetEffective(agg.ID)
		testutil.AssertNoError(t, err)
		if eff.Budget != -100 {
			t.Errorf("expected derived budget -100, got %d", eff.Budget)
		}
	})

	t.Run("unknown_is_zero", func(t *testing.T) {
		e := newEngine(t)

		eff, err := e.budgets.GetEffective("missing")
		testutil.AssertNoError(t, err)
		if *eff != (EffectiveValues{}) {
			t.Errorf("expected zeros, got %+v", *eff)
		}
	})

	t.Run("cycle_is_corrupt", func(t *testing.T) {
		e := newEngine(t)
		a := testutil.CreateTestCategoryWithName(t, e.db, "A", models.CategoryKindExpense, nil, true)
		b := testutil.CreateTestCategoryWithName(t, e.db, "B", models.CategoryKindExpense, &a.ID, true)
		e.db.Model(a).Update("parent_id", b.ID)

		_, err := e.budgets.GetEffective(a.ID)
		testutil.AssertAppError(t, err, "CORRUPT_HIERARCHY")

		_, err = e.budgets.GetOverview()
		testutil.AssertAppError(t, err, "CORRUPT_HIERARCHY")
	})
}

// assertRollup checks that every aggregate equals the sum of its children.
func assertRollup(t *testing.T, e *engine) {
	t.Helper()
	cats, err := e.categories.ListCategories()
	testutil.AssertNoError(t, err)

	children := make(map[string][]string)
	for _, c := range cats {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	for _, c := range cats {
		if !c.IsAggregate {
			continue
		}
		parent, err := e.budgets.GetEffective(c.ID)
		testutil.AssertNoError(t, err)
		var sum EffectiveValues
		for _, id := range children[c.ID] {
			child, err := e.budgets.GetEffective(id)
			testutil.AssertNoError(t, err)
			sum.SumPast += child.SumPast
			sum.SumCurrent += child.SumCurrent
			sum.Budget += child.Budget
		}
		if *parent != sum {
			t.Errorf("aggregate %s: %+v != sum of children %+v", c.Name, *parent, sum)
		}
	}
}

func TestGetOverview(t *testing.T) {
	e := newEngine(t)
	home := mustCategory(t, e, "Home", models.CategoryKindExpense, nil, true)
	mustCategory(t, e, "Rent", models.CategoryKindExpense, home, false)
	mustCategory(t, e, "Energy", models.CategoryKindExpense, home, false)
	mustCategory(t, e, "Salary", models.CategoryKindIncome, nil, false)
	mustAdd(t, e, input("Rent", -900, models.PeriodCurrent))

	rows, err := e.budgets.GetOverview()
	testutil.AssertNoError(t, err)

	want := []struct {
		name  string
		depth int
	}{
		{"Home", 0}, {"Energy", 1}, {"Rent", 1}, {"Salary", 0},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Name != w.name || rows[i].Depth != w.depth {
			t.Errorf("row %d: expected %s at depth %d, got %s at %d", i, w.name, w.depth, rows[i].Name, rows[i].Depth)
		}
	}
	if rows[0].SumCurrent != 900 {
		t.Errorf("expected Home to roll up 900, got %d", rows[0].SumCurrent)
	}
}

func TestBudgetTotals(t *testing.T) {
	e := newEngine(t)
	agg := mustCategory(t, e, "Home", models.CategoryKindExpense, nil, true)
	rent := mustCategory(t, e, "Rent", models.CategoryKindExpense, agg, false)
	energy := mustCategory(t, e, "Energy", models.CategoryKindExpense, agg, false)
	mustCategory(t, e, "Water", models.CategoryKindExpense, agg, false)
	salary := mustCategory(t, e, "Salary", models.CategoryKindIncome, nil, false)

	has, err := e.budgets.HasAnyBudget()
	testutil.AssertNoError(t, err)
	if has {
		t.Error("expected no budgets yet")
	}

	_, err = e.budgets.SetLeafBudget(rent.ID, -1000)
	testutil.AssertNoError(t, err)
	_, err = e.budgets.SetLeafBudget(energy.ID, 0)
	testutil.AssertNoError(t, err)
	_, err = e.budgets.SetLeafBudget(salary.ID, 5000)
	testutil.AssertNoError(t, err)
	testutil.SetTestBudget(t, e.db, agg.ID, -7777)

	total, err := e.budgets.TotalBudget(models.CategoryKindExpense)
	testutil.AssertNoError(t, err)
	if total != 1000 {
		t.Errorf("expected expense total 1000, got %d", total)
	}

	has, err = e.budgets.HasAnyBudget()
	testutil.AssertNoError(t, err)
	if !has {
		t.Error("expected budgets")
	}

	report, err := e.budgets.CheckCompleteness(models.CategoryKindExpense)
	testutil.AssertNoError(t, err)
	if report.IsComplete || report.TotalCategories != 3 || report.CategoriesWithBudget != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(report.MissingCategories) != 2 || report.MissingCategories[0] != "Energy" || report.MissingCategories[1] != "Water" {
		t.Errorf("expected Energy and Water missing, got %v", report.MissingCategories)
	}

	report, err = e.budgets.CheckCompleteness(models.CategoryKindIncome)
	testutil.AssertNoError(t, err)
	if !report.IsComplete {
		t.Errorf("expected income complete, got %+v", report)
	}

	_, err = e.budgets.TotalBudget(models.CategoryKind("other"))
	testutil.AssertAppError(t, err, "INVALID_KIND")
}
