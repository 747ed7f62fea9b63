package services

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
)

// UnassignedLabel is the category key of transactions without a category.
const UnassignedLabel = "(unassigned)"

// PivotRequest selects the grouping of a pivot. Kind, when set, keeps only
// amounts of the matching sign.
type PivotRequest struct {
	Dimensions []models.Dimension
	Period     models.Period
	Kind       *models.CategoryKind
}

// PivotRow is the signed total of one full key path.
type PivotRow struct {
	KeyPath []string `json:"key_path"`
	Total   int64    `json:"total"`
}

// PivotNode is one level of the hierarchical view of a pivot.
type PivotNode struct {
	Key      string      `json:"key"`
	Total    int64       `json:"total"`
	Children []PivotNode `json:"children,omitempty"`
}

// PivotResult holds the rows of a pivot ordered by key path.
type PivotResult struct {
	Dimensions []models.Dimension `json:"dimensions"`
	Rows       []PivotRow         `json:"rows"`
	GrandTotal int64              `json:"grand_total"`
}

// Subtotal sums every row whose key path starts with prefix. An empty
// prefix yields the grand total.
func (r *PivotResult) Subtotal(prefix ...string) int64 {
	var total int64
	for _, row := range r.Rows {
		if hasPrefix(row.KeyPath, prefix) {
			total += row.Total
		}
	}
	return total
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Hierarchy folds the rows into nested nodes, one level per dimension,
// each carrying the subtotal of everything below it.
func (r *PivotResult) Hierarchy() []PivotNode {
	return buildLevel(r.Rows, 0)
}

func buildLevel(rows []PivotRow, level int) []PivotNode {
	var nodes []PivotNode
	for start := 0; start < len(rows); {
		if level >= len(rows[start].KeyPath) {
			start++
			continue
		}
		key := rows[start].KeyPath[level]
		end := start
		var total int64
		for end < len(rows) && level < len(rows[end].KeyPath) && rows[end].KeyPath[level] == key {
			total += rows[end].Total
			end++
		}
		nodes = append(nodes, PivotNode{
			Key:      key,
			Total:    total,
			Children: buildLevel(rows[start:end], level+1),
		})
		start = end
	}
	return nodes
}

// pivotService groups the ledger by a chosen set of dimensions.
type pivotService struct {
	db *gorm.DB
}

// NewPivotService creates a new PivotServicer.
func NewPivotService(db *gorm.DB) PivotServicer {
	return &pivotService{db: db}
}

func validatePivot(req PivotRequest) error {
	if len(req.Dimensions) > models.MaxPivotDimensions {
		return apperrors.WithMessage(apperrors.ErrInvalidDimension,
			fmt.Sprintf("at most %d dimensions are allowed", models.MaxPivotDimensions))
	}
	seen := make(map[models.Dimension]struct{}, len(req.Dimensions))
	for _, d := range req.Dimensions {
		if !d.IsValid() {
			return apperrors.WithMessage(apperrors.ErrInvalidDimension, "unknown pivot dimension: "+string(d))
		}
		if _, dup := seen[d]; dup {
			return apperrors.WithMessage(apperrors.ErrInvalidDimension, "dimension listed twice: "+string(d))
		}
		seen[d] = struct{}{}
	}
	if !req.Period.IsValid() {
		return apperrors.ErrInvalidPeriod
	}
	if req.Kind != nil && !req.Kind.IsValid() {
		return apperrors.ErrInvalidKind
	}
	return nil
}

// Pivot sums signed amounts of one period grouped by the requested
// dimensions. With no dimensions it returns one row holding the grand total.
func (s *pivotService) Pivot(req PivotRequest) (*PivotResult, error) {
	if err := validatePivot(req); err != nil {
		return nil, err
	}

	selects := make([]string, 0, len(req.Dimensions)+3)
	groups := make([]string, 0, len(req.Dimensions)+2)
	for i, d := range req.Dimensions {
		col, _ := d.Column()
		selects = append(selects, fmt.Sprintf("%s AS d%d", col, i))
		groups = append(groups, col)
		if d == models.DimensionCategory {
			// Name and kind only label the group; the id identifies it.
			selects = append(selects, "categories.name AS category_name", "categories.kind AS category_kind")
			groups = append(groups, "categories.name", "categories.kind")
		}
	}
	selects = append(selects, "COALESCE(SUM(transactions.amount), 0) AS total")

	q := s.db.Table("transactions").
		Select(strings.Join(selects, ", ")).
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.period = ?", req.Period)
	if req.Kind != nil {
		q = q.Where(signCondition(*req.Kind))
	}
	if len(groups) > 0 {
		q = q.Group(strings.Join(groups, ", "))
	}

	rows, err := q.Rows()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer rows.Close()

	catIdx := categoryIndex(req.Dimensions)
	var groupsFound []pivotGroup
	for rows.Next() {
		keys := make([]sql.NullString, len(req.Dimensions))
		var categoryName, categoryKind sql.NullString
		dest := make([]any, 0, len(keys)+3)
		for i, d := range req.Dimensions {
			dest = append(dest, &keys[i])
			if d == models.DimensionCategory {
				dest = append(dest, &categoryName, &categoryKind)
			}
		}
		var total int64
		dest = append(dest, &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		g := pivotGroup{keys: keys, total: total}
		if catIdx >= 0 {
			g.category = categoryRef{id: keys[catIdx], name: categoryName.String, kind: categoryKind.String}
		}
		groupsFound = append(groupsFound, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	labels := categoryLabels(groupsFound)
	totals := make(map[string]*PivotRow, len(groupsFound))
	for _, g := range groupsFound {
		path := make([]string, len(g.keys))
		identity := make([]string, len(g.keys))
		for i, d := range req.Dimensions {
			if d == models.DimensionCategory {
				path[i] = labels[g.category.key()]
				identity[i] = g.category.key()
				continue
			}
			path[i] = g.keys[i].String
			identity[i] = g.keys[i].String
		}
		id := strings.Join(identity, "\x00")
		if row, ok := totals[id]; ok {
			row.Total += g.total
			continue
		}
		totals[id] = &PivotRow{KeyPath: path, Total: g.total}
	}

	result := &PivotResult{
		Dimensions: req.Dimensions,
		Rows:       make([]PivotRow, 0, len(totals)),
	}
	for _, row := range totals {
		result.Rows = append(result.Rows, *row)
		result.GrandTotal += row.Total
	}
	if len(req.Dimensions) == 0 && len(result.Rows) == 0 {
		result.Rows = append(result.Rows, PivotRow{KeyPath: []string{}})
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		return lessKeyPath(result.Rows[i].KeyPath, result.Rows[j].KeyPath)
	})
	return result, nil
}

type categoryRef struct {
	id   sql.NullString
	name string
	kind string
}

// key identifies the group: the category id, or a marker no id can take
// for transactions without a category.
func (c categoryRef) key() string {
	if !c.id.Valid {
		return "\x00unassigned"
	}
	return c.id.String
}

func (c categoryRef) label() string {
	if !c.id.Valid {
		return UnassignedLabel
	}
	return c.name
}

type pivotGroup struct {
	keys     []sql.NullString
	category categoryRef
	total    int64
}

// categoryIndex returns the position of the category dimension, or -1.
func categoryIndex(dims []models.Dimension) int {
	for i, d := range dims {
		if d == models.DimensionCategory {
			return i
		}
	}
	return -1
}

// categoryLabels names every category group. A name shared by several
// groups, such as an income and an expense "Salary" or a category called
// like UnassignedLabel, gets its kind appended so the labels stay distinct.
func categoryLabels(groups []pivotGroup) map[string]string {
	owners := make(map[string]map[string]struct{})
	for _, g := range groups {
		label := g.category.label()
		if owners[label] == nil {
			owners[label] = make(map[string]struct{})
		}
		owners[label][g.category.key()] = struct{}{}
	}

	labels := make(map[string]string, len(groups))
	for _, g := range groups {
		label := g.category.label()
		if len(owners[label]) > 1 && g.category.id.Valid {
			label = fmt.Sprintf("%s (%s)", label, g.category.kind)
		}
		labels[g.category.key()] = label
	}
	return labels
}

func lessKeyPath(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		al, bl := strings.ToLower(a[i]), strings.ToLower(b[i])
		if al != bl {
			return al < bl
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}
