// Package report renders engine results as terminal tables.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/calendar"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/money"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	numberStyle = cellStyle.Align(lipgloss.Right)

	aggregateStyle = cellStyle.Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(ColorTextMuted)
	goodStyle  = numberStyle.Foreground(ColorGreen)
	warnStyle  = numberStyle.Foreground(ColorOrange)
	badStyle   = numberStyle.Foreground(ColorRed)
)

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// Muted renders a secondary line such as an empty-result notice.
func Muted(text string) string {
	return "  " + mutedStyle.Render(text)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...)
}

// numericFrom styles every column from first onwards as a number.
func numericFrom(first int) func(row, col int) lipgloss.Style {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col >= first:
			return numberStyle
		default:
			return cellStyle
		}
	}
}

func indent(name string, depth int) string {
	return strings.Repeat("  ", depth) + name
}

// Overview renders the category tree with its effective values. Expense
// sums are shown without a sign.
func Overview(rows []services.OverviewRow, symbol string) string {
	if len(rows) == 0 {
		return Muted("No categories yet.")
	}

	t := newTable("Category", "Kind", "Historical", "Current", "Budget")
	for _, r := range rows {
		format := money.Format
		if r.Kind == models.CategoryKindExpense {
			format = money.FormatAbs
		}
		t.Row(
			indent(r.Name, r.Depth),
			string(r.Kind),
			format(r.SumPast, symbol),
			format(r.SumCurrent, symbol),
			format(r.Budget, symbol),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col >= 2:
			return numberStyle
		case col == 0 && row < len(rows) && rows[row].IsAggregate:
			return aggregateStyle
		default:
			return cellStyle
		}
	})
	return t.String()
}

// Pivot renders one line per key path followed by the grand total.
func Pivot(result *services.PivotResult, symbol string) string {
	headers := make([]string, 0, len(result.Dimensions)+1)
	for _, d := range result.Dimensions {
		headers = append(headers, string(d))
	}
	headers = append(headers, "Total")

	t := newTable(headers...)
	for _, r := range result.Rows {
		cells := append(append([]string{}, r.KeyPath...), money.Format(r.Total, symbol))
		t.Row(cells...)
	}
	grand := make([]string, len(headers))
	grand[0] = "TOTAL"
	grand[len(grand)-1] = money.Format(result.GrandTotal, symbol)
	t.Row(grand...)
	t.StyleFunc(numericFrom(len(result.Dimensions)))
	return t.String()
}

func ratioStyle(r services.Ratio) lipgloss.Style {
	switch {
	case r.IsNew():
		return warnStyle
	case r.Percent > 100:
		return badStyle
	default:
		return goodStyle
	}
}

// Performance renders month-over-month ratios in tree order.
func Performance(rows []services.Performance, symbol string) string {
	if len(rows) == 0 {
		return Muted("No categories yet.")
	}

	t := newTable("Category", "Historical", "Current", "Own", "Total", "Worst")
	for _, p := range rows {
		t.Row(
			indent(p.Name, p.Depth),
			money.Format(p.Historical, symbol),
			money.Format(p.Current, symbol),
			p.Own.String(),
			p.Total.String(),
			p.Worst.String(),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= len(rows) {
			return cellStyle
		}
		switch col {
		case 0:
			if rows[row].IsAggregate {
				return aggregateStyle
			}
			return cellStyle
		case 3:
			return ratioStyle(rows[row].Own)
		case 4:
			return ratioStyle(rows[row].Total)
		case 5:
			return ratioStyle(rows[row].Worst)
		default:
			return numberStyle
		}
	})
	return t.String()
}

// Comparison renders the per-leaf figures of one calendar month.
func Comparison(month int, rows []services.MonthComparison, symbol string) string {
	if len(rows) == 0 {
		return Muted(fmt.Sprintf("No activity in month %d.", month))
	}

	t := newTable("Category", "Historical", "Current", "Change")
	for _, r := range rows {
		t.Row(
			r.Name,
			money.Format(r.Historical, symbol),
			money.Format(r.Current, symbol),
			services.NewRatio(r.Current, r.Historical).String(),
		)
	}
	t.StyleFunc(numericFrom(1))
	return t.String()
}

// UnassignedKeys renders the keys still waiting for a category.
func UnassignedKeys(keys []services.UnassignedKey) string {
	if len(keys) == 0 {
		return Muted("Every keyed transaction has a category.")
	}

	t := newTable("Key", "Suggested kind", "Transactions")
	for _, k := range keys {
		kind := string(k.SuggestedKind)
		if kind == "" {
			kind = "-"
		}
		t.Row(k.Key, kind, fmt.Sprint(k.Count))
	}
	t.StyleFunc(numericFrom(2))
	return t.String()
}

// Suggestions renders the closest existing leaf for each unassigned key.
func Suggestions(suggestions []services.CategorySuggestion) string {
	if len(suggestions) == 0 {
		return Muted("No close matches.")
	}

	t := newTable("Key", "Category", "Kind", "Distance")
	for _, s := range suggestions {
		t.Row(s.Key, s.CategoryName, string(s.Kind), fmt.Sprint(s.Distance))
	}
	t.StyleFunc(numericFrom(3))
	return t.String()
}

// Completeness renders which leaves of a kind still lack a budget.
func Completeness(kind models.CategoryKind, c *services.BudgetCompleteness) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s budgets: %d of %d categories planned\n", kind, c.CategoriesWithBudget, c.TotalCategories)
	if c.IsComplete {
		b.WriteString(Muted("Budget is complete."))
		return b.String()
	}

	t := newTable("Missing budget")
	for _, name := range c.MissingCategories {
		t.Row(name)
	}
	t.StyleFunc(numericFrom(1))
	b.WriteString(t.String())
	return b.String()
}

// Transactions renders ledger entries, newest first as given.
func Transactions(txns []models.Transaction, symbol string) string {
	if len(txns) == 0 {
		return Muted("No transactions.")
	}

	t := newTable("Date", "Key", "Category", "Amount")
	for _, txn := range txns {
		category := "-"
		if txn.Category != nil {
			category = txn.Category.Name
		}
		t.Row(calendar.FormatDate(txn.Date), txn.Key, category, money.Format(txn.Amount, symbol))
	}
	t.StyleFunc(numericFrom(3))
	return t.String()
}
