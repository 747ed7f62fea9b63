package services

import (
	"testing"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid_leaf", func(t *testing.T) {
		e := newEngine(t)

		cat, err := e.categories.CreateCategory("  Groceries ", models.CategoryKindExpense, nil, false)
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected an id")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected trimmed name Groceries, got %q", cat.Name)
		}
		if cat.IsAggregate {
			t.Error("expected a leaf")
		}
	})

	t.Run("duplicate_name_and_kind", func(t *testing.T) {
		e := newEngine(t)
		mustCategory(t, e, "Food", models.CategoryKindExpense, nil, false)

		_, err := e.categories.CreateCategory("Food", models.CategoryKindExpense, nil, true)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_kind", func(t *testing.T) {
		e := newEngine(t)
		mustCategory(t, e, "Salary", models.CategoryKindIncome, nil, false)

		_, err := e.categories.CreateCategory("Salary", models.CategoryKindExpense, nil, false)
		testutil.AssertNoError(t, err)
	})

	t.Run("child_of_aggregate", func(t *testing.T) {
		e := newEngine(t)
		parent := mustCategory(t, e, "Household", models.CategoryKindExpense, nil, true)

		child := mustCategory(t, e, "Groceries", models.CategoryKindExpense, parent, false)
		if child.ParentID == nil || *child.ParentID != parent.ID {
			t.Errorf("expected parent %s, got %v", parent.ID, child.ParentID)
		}
	})

	t.Run("parent_is_leaf", func(t *testing.T) {
		e := newEngine(t)
		leaf := mustCategory(t, e, "Groceries", models.CategoryKindExpense, nil, false)

		_, err := e.categories.CreateCategory("Snacks", models.CategoryKindExpense, &leaf.ID, false)
		testutil.AssertAppError(t, err, "INVALID_HIERARCHY")
	})

	t.Run("kind_differs_from_parent", func(t *testing.T) {
		e := newEngine(t)
		parent := mustCategory(t, e, "Household", models.CategoryKindExpense, nil, true)

		_, err := e.categories.CreateCategory("Refunds", models.CategoryKindIncome, &parent.ID, false)
		testutil.AssertAppError(t, err, "INVALID_HIERARCHY")
	})

	t.Run("unknown_parent", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.categories.CreateCategory("Orphan", models.CategoryKindExpense, testutil.StrPtr("missing"), false)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("empty_name", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.categories.CreateCategory("   ", models.CategoryKindExpense, nil, false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_kind", func(t *testing.T) {
		e := newEngine(t)

		_, err := e.categories.CreateCategory("Misc", models.CategoryKind("transfer"), nil, false)
		testutil.AssertAppError(t, err, "INVALID_KIND")
	})

	t.Run("failure_writes_nothing", func(t *testing.T) {
		e := newEngine(t)
		leaf := mustCategory(t, e, "Groceries", models.CategoryKindExpense, nil, false)

		_, err := e.categories.CreateCategory("Snacks", models.CategoryKindExpense, &leaf.ID, false)
		testutil.AssertAppError(t, err, "INVALID_HIERARCHY")

		var count int64
		e.db.Model(&models.Category{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 category, got %d", count)
		}
	})
}

func TestListCategories(t *testing.T) {
	e := newEngine(t)
	mustCategory(t, e, "Salary", models.CategoryKindIncome, nil, false)
	mustCategory(t, e, "Rent", models.CategoryKindExpense, nil, false)
	mustCategory(t, e, "Food", models.CategoryKindExpense, nil, false)

	cats, err := e.categories.ListCategories()
	testutil.AssertNoError(t, err)

	want := []string{"Food", "Rent", "Salary"}
	if len(cats) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(cats))
	}
	for i, name := range want {
		if cats[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, cats[i].Name)
		}
	}
}

func TestDeleteCategory(t *testing.T) {
	t.Run("unassigns_transactions", func(t *testing.T) {
		e := newEngine(t)
		leaf := mustCategory(t, e, "Groceries", models.CategoryKindExpense, nil, false)
		txn := mustAdd(t, e, input("Groceries", -500, models.PeriodHistorical))
		testutil.AssertCategoryID(t, e.db, txn.ID, leaf.ID)
		_, err := e.budgets.SetLeafBudget(leaf.ID, -1000)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, e.categories.DeleteCategory(leaf.ID))

		testutil.AssertCategoryID(t, e.db, txn.ID, "")
		var txCount, budgetCount, metricCount int64
		e.db.Model(&models.Transaction{}).Count(&txCount)
		e.db.Model(&models.Budget{}).Count(&budgetCount)
		e.db.Model(&models.CategoryMetric{}).Count(&metricCount)
		if txCount != 1 {
			t.Errorf("expected the ledger row to survive, got %d rows", txCount)
		}
		if budgetCount != 0 || metricCount != 0 {
			t.Errorf("expected satellite rows removed, got %d budgets and %d metrics", budgetCount, metricCount)
		}

		_, err = e.categories.GetCategoryByID(leaf.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("has_children", func(t *testing.T) {
		e := newEngine(t)
		parent := mustCategory(t, e, "Household", models.CategoryKindExpense, nil, true)
		mustCategory(t, e, "Groceries", models.CategoryKindExpense, parent, false)

		err := e.categories.DeleteCategory(parent.ID)
		testutil.AssertAppError(t, err, "HAS_CHILDREN")
	})

	t.Run("parent_rollup_follows", func(t *testing.T) {
		e := newEngine(t)
		parent := mustCategory(t, e, "Household", models.CategoryKindExpense, nil, true)
		a := mustCategory(t, e, "Groceries", models.CategoryKindExpense, parent, false)
		b := mustCategory(t, e, "Energy", models.CategoryKindExpense, parent, false)
		_, err := e.budgets.SetLeafBudget(a.ID, -1000)
		testutil.AssertNoError(t, err)
		_, err = e.budgets.SetLeafBudget(b.ID, -300)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, e.categories.DeleteCategory(a.ID))

		eff, err := e.budgets.GetEffective(parent.ID)
		testutil.AssertNoError(t, err)
		if eff.Budget != -300 {
			t.Errorf("expected parent budget -300, got %d", eff.Budget)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		e := newEngine(t)

		err := e.categories.DeleteCategory("missing")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("second_delete_finds_nothing", func(t *testing.T) {
		e := newEngine(t)
		parent := mustCategory(t, e, "Household", models.CategoryKindExpense, nil, true)
		leaf := mustCategory(t, e, "Groceries", models.CategoryKindExpense, parent, false)
		txn := mustAdd(t, e, input("Groceries", -500, models.PeriodCurrent))

		testutil.AssertNoError(t, e.categories.DeleteCategory(leaf.ID))
		err := e.categories.DeleteCategory(leaf.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		testutil.AssertCategoryID(t, e.db, txn.ID, "")
		if _, err := e.categories.GetCategoryByID(parent.ID); err != nil {
			t.Errorf("parent should survive, got %v", err)
		}
	})
}
