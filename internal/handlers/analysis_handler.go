package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

// AnalysisHandler handles pivot and performance reports.
type AnalysisHandler struct {
	pivotService       services.PivotServicer
	performanceService services.PerformanceServicer
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(pivotService services.PivotServicer, performanceService services.PerformanceServicer) *AnalysisHandler {
	return &AnalysisHandler{pivotService: pivotService, performanceService: performanceService}
}

// PivotRequest represents the grouping of a pivot report.
type PivotRequest struct {
	Dimensions []models.Dimension   `json:"dimensions" binding:"dive,pivot_dimension"`
	Period     models.Period        `json:"period" binding:"required,ledger_period"`
	Kind       *models.CategoryKind `json:"kind" binding:"omitempty,category_kind"`
}

// PivotResponse is a pivot in both flat and nested form.
type PivotResponse struct {
	Dimensions []models.Dimension   `json:"dimensions"`
	Rows       []services.PivotRow  `json:"rows"`
	Hierarchy  []services.PivotNode `json:"hierarchy"`
	GrandTotal int64                `json:"grand_total"`
}

// Pivot handles grouping a ledger period by up to five dimensions.
// @Summary     Pivot report
// @Tags        analysis
// @Accept      json
// @Produce     json
// @Param       request body PivotRequest true "Dimensions, period and optional kind"
// @Success     200 {object} PivotResponse "Grouped totals"
// @Failure     400 {object} ErrorResponse "Invalid dimension or period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pivot [post]
func (h *AnalysisHandler) Pivot(c *gin.Context) {
	var req PivotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, pivotBindError(err))
		return
	}

	result, err := h.pivotService.Pivot(services.PivotRequest{
		Dimensions: req.Dimensions,
		Period:     req.Period,
		Kind:       req.Kind,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	hierarchy := result.Hierarchy()
	if hierarchy == nil {
		hierarchy = []services.PivotNode{}
	}
	c.JSON(http.StatusOK, PivotResponse{
		Dimensions: result.Dimensions,
		Rows:       result.Rows,
		Hierarchy:  hierarchy,
		GrandTotal: result.GrandTotal,
	})
}

// pivotBindError reports an unknown dimension with its own code.
func pivotBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "pivot_dimension" {
				return apperrors.WithMessage(apperrors.ErrInvalidDimension, fmt.Sprintf("unknown pivot dimension %q", fe.Value()))
			}
		}
	}
	return bindError(err)
}

// GetCategoryPerformance handles the month ratios of one category.
// @Summary     Category performance
// @Tags        analysis
// @Produce     json
// @Param       id    path  string true "Category ID"
// @Param       month query int    true "Calendar month 1-12"
// @Success     200 {object} services.Performance "Ratios"
// @Failure     400 {object} ErrorResponse "Invalid category ID or month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/performance [get]
func (h *AnalysisHandler) GetCategoryPerformance(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := parseMonthQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	perf, err := h.performanceService.Performance(categoryID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": perf})
}

// ListPerformance handles the month ratios of every category.
// @Summary     Performance of all categories
// @Tags        analysis
// @Produce     json
// @Param       month query int    true  "Calendar month 1-12"
// @Param       kind  query string false "income or expense"
// @Success     200 {array} services.Performance "Ratios in tree order"
// @Failure     400 {object} ErrorResponse "Invalid month or kind"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /performance [get]
func (h *AnalysisHandler) ListPerformance(c *gin.Context) {
	month, err := parseMonthQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	kind, err := parseKindQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.performanceService.PerformanceAll(month, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": rows})
}

// CompareMonth handles the per-leaf comparison of one calendar month.
// @Summary     Month comparison
// @Tags        analysis
// @Produce     json
// @Param       month query int    true "Calendar month 1-12"
// @Param       kind  query string true "income or expense"
// @Success     200 {array} services.MonthComparison "Leaves with activity in the month"
// @Failure     400 {object} ErrorResponse "Invalid month or kind"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /performance/compare [get]
func (h *AnalysisHandler) CompareMonth(c *gin.Context) {
	month, err := parseMonthQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	kind, err := requireKindQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.performanceService.CompareMonth(month, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparison": rows})
}
