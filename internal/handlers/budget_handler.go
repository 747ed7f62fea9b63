package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

// BudgetHandler handles budget and rollup requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudgetRequest represents the yearly planned amount of a leaf as a
// display string, e.g. "12 000" or "-4500,50".
type SetBudgetRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// BudgetResponse carries both the stored and the rolled-up budget of a
// category.
type BudgetResponse struct {
	CategoryID string                   `json:"category_id"`
	OwnBudget  int64                    `json:"own_budget"`
	Effective  services.EffectiveValues `json:"effective"`
}

// BudgetTotalResponse is the total planned amount of a kind.
type BudgetTotalResponse struct {
	Kind         models.CategoryKind `json:"kind"`
	Total        int64               `json:"total"`
	HasAnyBudget bool                `json:"has_any_budget"`
}

// SetLeafBudget handles storing the planned amount of a leaf.
// @Summary     Set leaf budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string           true "Category ID"
// @Param       request body SetBudgetRequest true "Planned amount"
// @Success     200 {object} models.Budget "Stored budget"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     422 {object} ErrorResponse "Category is an aggregate"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/budget [put]
func (h *BudgetHandler) SetLeafBudget(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	amount, err := parseAmount(req.Amount, true)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.SetLeafBudget(categoryID, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudget handles reading the stored and effective values of a category.
// Unknown categories read as zero.
// @Summary     Category budget and sums
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} BudgetResponse "Own and effective values"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/budget [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	own, err := h.budgetService.GetOwnBudget(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	effective, err := h.budgetService.GetEffective(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{CategoryID: categoryID, OwnBudget: own, Effective: *effective})
}

// GetOverview handles the full tree with effective values.
// @Summary     Budget overview
// @Tags        budgets
// @Produce     json
// @Success     200 {array} services.OverviewRow "Overview rows in tree order"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetOverview(c *gin.Context) {
	rows, err := h.budgetService.GetOverview()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetTotal handles the planned total of a kind.
// @Summary     Budget total
// @Tags        budgets
// @Produce     json
// @Param       kind query string true "income or expense"
// @Success     200 {object} BudgetTotalResponse "Total planned amount"
// @Failure     400 {object} ErrorResponse "Invalid kind"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/total [get]
func (h *BudgetHandler) GetTotal(c *gin.Context) {
	kind, err := requireKindQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.budgetService.TotalBudget(kind)
	if err != nil {
		respondWithError(c, err)
		return
	}
	hasAny, err := h.budgetService.HasAnyBudget()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetTotalResponse{Kind: kind, Total: total, HasAnyBudget: hasAny})
}

// CheckCompleteness handles listing the leaves of a kind without a budget.
// @Summary     Budget completeness
// @Tags        budgets
// @Produce     json
// @Param       kind query string true "income or expense"
// @Success     200 {object} services.BudgetCompleteness "Completeness report"
// @Failure     400 {object} ErrorResponse "Invalid kind"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/completeness [get]
func (h *BudgetHandler) CheckCompleteness(c *gin.Context) {
	kind, err := requireKindQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.budgetService.CheckCompleteness(kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
