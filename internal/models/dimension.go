package models

// Dimension is a ledger field a pivot may group by.
type Dimension string

const (
	DimensionCategory          Dimension = "category"
	DimensionCostCenter        Dimension = "cost-center"
	DimensionMemo              Dimension = "memo"
	DimensionResponsiblePerson Dimension = "responsible-person"
	DimensionCounterparty      Dimension = "counterparty"
)

// MaxPivotDimensions caps the depth of a pivot key.
const MaxPivotDimensions = 5

var dimensionColumns = map[Dimension]string{
	DimensionCategory:          "transactions.category_id",
	DimensionCostCenter:        "transactions.cost_center",
	DimensionMemo:              "transactions.memo",
	DimensionResponsiblePerson: "transactions.responsible_person",
	DimensionCounterparty:      "transactions.counterparty",
}

// Dimensions lists every allowed dimension.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionCategory,
		DimensionCostCenter,
		DimensionMemo,
		DimensionResponsiblePerson,
		DimensionCounterparty,
	}
}

// IsValid reports whether d is an allowed dimension.
func (d Dimension) IsValid() bool {
	_, ok := dimensionColumns[d]
	return ok
}

// Column returns the qualified storage column of d. It is the only source
// of column names for pivot queries.
func (d Dimension) Column() (string, bool) {
	col, ok := dimensionColumns[d]
	return col, ok
}
