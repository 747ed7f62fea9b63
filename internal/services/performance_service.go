package services

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/calendar"
	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/hierarchy"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// RatioKind tells a numeric ratio apart from one without a baseline.
type RatioKind string

const (
	RatioPercent RatioKind = "percent"
	RatioNew     RatioKind = "new"
)

// Ratio is current spending as a percentage of historical spending. A
// category with current but no historical spending has the RatioNew kind
// and no percentage.
type Ratio struct {
	Kind    RatioKind `json:"kind"`
	Percent float64   `json:"percent,omitempty"`
}

// NewRatio compares two absolute sums.
func NewRatio(current, historical int64) Ratio {
	if historical == 0 {
		if current > 0 {
			return Ratio{Kind: RatioNew}
		}
		return Ratio{Kind: RatioPercent}
	}
	return Ratio{Kind: RatioPercent, Percent: float64(current) / float64(historical) * 100}
}

// IsNew reports whether r has no baseline.
func (r Ratio) IsNew() bool { return r.Kind == RatioNew }

// Worse reports whether r ranks above o. A ratio without a baseline ranks
// above every percentage.
func (r Ratio) Worse(o Ratio) bool {
	if r.IsNew() || o.IsNew() {
		return r.IsNew() && !o.IsNew()
	}
	return r.Percent > o.Percent
}

func (r Ratio) String() string {
	if r.IsNew() {
		return "new"
	}
	return strings.Replace(fmt.Sprintf("%.1f %%", r.Percent), ".", ",", 1)
}

// Performance compares one calendar month of the current period with the
// same month of the historical period.
type Performance struct {
	CategoryID    string              `json:"category_id"`
	Name          string              `json:"name"`
	Kind          models.CategoryKind `json:"kind"`
	IsAggregate   bool                `json:"is_aggregate"`
	Depth         int                 `json:"depth"`
	Month         int                 `json:"month"`
	OwnHistorical int64               `json:"own_historical"`
	OwnCurrent    int64               `json:"own_current"`
	Historical    int64               `json:"historical"`
	Current       int64               `json:"current"`
	Own           Ratio               `json:"own_pct"`
	Total         Ratio               `json:"total_pct"`
	Worst         Ratio               `json:"worst_pct"`
}

// MonthComparison is one leaf's spending in a calendar month of both periods.
type MonthComparison struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Historical int64  `json:"historical"`
	Current    int64  `json:"current"`
}

type monthSums struct {
	CategoryID string
	SumPast    int64
	SumCurrent int64
}

type perfValue struct {
	historical int64
	current    int64
	worst      Ratio
}

// performanceService computes month-over-month ratios over the tree.
type performanceService struct {
	db *gorm.DB
}

// NewPerformanceService creates a new PerformanceServicer.
func NewPerformanceService(db *gorm.DB) PerformanceServicer {
	return &performanceService{db: db}
}

func validateMonth(month int) error {
	if !calendar.ValidMonth(month) {
		return apperrors.WithMessage(apperrors.ErrInvalidDate, "month must be between 1 and 12")
	}
	return nil
}

// loadMonthSums returns the absolute sums of each category's direct
// transactions in month, keyed by category id.
func loadMonthSums(db *gorm.DB, month int) (map[string]monthSums, error) {
	var rows []monthSums
	if err := db.Model(&models.Transaction{}).
		Select(
			"category_id, "+
				"COALESCE(SUM(CASE WHEN period = ? THEN ABS(amount) ELSE 0 END), 0) AS sum_past, "+
				"COALESCE(SUM(CASE WHEN period = ? THEN ABS(amount) ELSE 0 END), 0) AS sum_current",
			models.PeriodHistorical, models.PeriodCurrent,
		).
		Where("month = ? AND category_id IS NOT NULL AND amount <> 0", month).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sums := make(map[string]monthSums, len(rows))
	for _, r := range rows {
		sums[r.CategoryID] = r
	}
	return sums, nil
}

type perfContext struct {
	tree   *hierarchy.Tree
	sums   map[string]monthSums
	folder *hierarchy.Folder[perfValue]
}

func (s *performanceService) load(month int) (*perfContext, error) {
	tree, err := loadTree(s.db)
	if err != nil {
		return nil, err
	}
	sums, err := loadMonthSums(s.db, month)
	if err != nil {
		return nil, err
	}

	pc := &perfContext{tree: tree, sums: sums}
	pc.folder = hierarchy.NewFolder(tree, func(c models.Category, children []perfValue) (perfValue, error) {
		var v perfValue
		if !c.IsAggregate {
			own := sums[c.ID]
			v.historical, v.current = own.SumPast, own.SumCurrent
		}
		for _, child := range children {
			v.historical += child.historical
			v.current += child.current
		}
		v.worst = NewRatio(v.current, v.historical)
		for _, child := range children {
			if child.worst.Worse(v.worst) {
				v.worst = child.worst
			}
		}
		return v, nil
	})
	return pc, nil
}

func (pc *perfContext) performance(id string, month int) (*Performance, error) {
	p := &Performance{
		CategoryID: id,
		Month:      month,
		Own:        Ratio{Kind: RatioPercent},
		Total:      Ratio{Kind: RatioPercent},
		Worst:      Ratio{Kind: RatioPercent},
	}
	c, ok := pc.tree.Get(id)
	if !ok {
		return p, nil
	}

	v, err := pc.folder.Value(id)
	if err != nil {
		return nil, err
	}
	depth, err := pc.tree.Depth(id)
	if err != nil {
		return nil, err
	}

	p.Name = c.Name
	p.Kind = c.Kind
	p.IsAggregate = c.IsAggregate
	p.Depth = depth
	if !c.IsAggregate {
		own := pc.sums[id]
		p.OwnHistorical, p.OwnCurrent = own.SumPast, own.SumCurrent
	}
	p.Historical, p.Current = v.historical, v.current
	p.Own = NewRatio(p.OwnCurrent, p.OwnHistorical)
	p.Total = NewRatio(p.Current, p.Historical)
	p.Worst = v.worst
	return p, nil
}

// Performance returns the ratios of one category for a calendar month.
// Unknown categories yield zero ratios.
func (s *performanceService) Performance(categoryID string, month int) (*Performance, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	pc, err := s.load(month)
	if err != nil {
		return nil, err
	}
	p, err := pc.performance(categoryID, month)
	if err != nil {
		return nil, hierarchyError("performance", err)
	}
	return p, nil
}

// PerformanceAll returns the ratios of every category in tree order,
// optionally restricted to one kind.
func (s *performanceService) PerformanceAll(month int, kind *models.CategoryKind) ([]Performance, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if kind != nil && !kind.IsValid() {
		return nil, apperrors.ErrInvalidKind
	}
	pc, err := s.load(month)
	if err != nil {
		return nil, err
	}
	if err := pc.tree.Validate(); err != nil {
		return nil, hierarchyError("performance", err)
	}

	var ordered []string
	var walk func(id string)
	walk = func(id string) {
		ordered = append(ordered, id)
		for _, child := range pc.tree.Children(id) {
			walk(child)
		}
	}
	for _, root := range pc.tree.Roots() {
		walk(root)
	}

	result := make([]Performance, 0, len(ordered))
	for _, id := range ordered {
		c, _ := pc.tree.Get(id)
		if kind != nil && c.Kind != *kind {
			continue
		}
		p, err := pc.performance(id, month)
		if err != nil {
			return nil, hierarchyError("performance", err)
		}
		result = append(result, *p)
	}
	return result, nil
}

// CompareMonth lists the leaves of a kind that have spending in month,
// ordered by current then historical spending, largest first.
func (s *performanceService) CompareMonth(month int, kind models.CategoryKind) ([]MonthComparison, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidKind
	}

	sums, err := loadMonthSums(s.db, month)
	if err != nil {
		return nil, err
	}
	var leaves []models.Category
	if err := s.db.Where("kind = ? AND is_aggregate = ?", kind, false).Find(&leaves).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := []MonthComparison{}
	for _, leaf := range leaves {
		m, ok := sums[leaf.ID]
		if !ok || (m.SumPast == 0 && m.SumCurrent == 0) {
			continue
		}
		result = append(result, MonthComparison{
			CategoryID: leaf.ID,
			Name:       leaf.Name,
			Historical: m.SumPast,
			Current:    m.SumCurrent,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Current != b.Current {
			return a.Current > b.Current
		}
		if a.Historical != b.Historical {
			return a.Historical > b.Historical
		}
		return a.Name < b.Name
	})
	return result, nil
}
