package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/calendar"
	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/pagination"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

// maxImportBatch caps the number of entries accepted by one import request.
const maxImportBatch = 10000

// TransactionHandler handles ledger requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the request payload of a ledger entry.
// Amounts are display strings such as "-1 234,50"; dates are YYYY-MM-DD
// or DD.MM.YYYY.
type TransactionRequest struct {
	Date              string        `json:"date" binding:"required"`
	Document          string        `json:"document" binding:"max=100"`
	Source            string        `json:"source" binding:"max=100"`
	Counterparty      string        `json:"counterparty" binding:"max=255"`
	Memo              string        `json:"memo" binding:"max=500"`
	Debit             string        `json:"debit"`
	Credit            string        `json:"credit"`
	Amount            string        `json:"amount" binding:"required"`
	Activity          int           `json:"activity"`
	Number            int           `json:"number"`
	Key               string        `json:"key" binding:"max=255"`
	ResponsiblePerson string        `json:"responsible_person" binding:"max=100"`
	CostCenter        string        `json:"cost_center" binding:"max=100"`
	Period            models.Period `json:"period" binding:"required,ledger_period"`
}

func (r *TransactionRequest) toInput() (services.TransactionInput, error) {
	date, err := calendar.ParseDate(r.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	amount, err := parseAmount(r.Amount, true)
	if err != nil {
		return services.TransactionInput{}, err
	}
	debit, err := parseAmount(r.Debit, false)
	if err != nil {
		return services.TransactionInput{}, err
	}
	credit, err := parseAmount(r.Credit, false)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Date:              date,
		Document:          r.Document,
		Source:            r.Source,
		Counterparty:      r.Counterparty,
		Memo:              r.Memo,
		Debit:             debit,
		Credit:            credit,
		Amount:            amount,
		Activity:          r.Activity,
		Number:            r.Number,
		Key:               r.Key,
		ResponsiblePerson: r.ResponsiblePerson,
		CostCenter:        r.CostCenter,
		Period:            r.Period,
	}, nil
}

// ImportRequest represents a bulk load into the ledger.
type ImportRequest struct {
	Transactions []TransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// TotalResponse represents the signed sum of a ledger period.
type TotalResponse struct {
	Period          models.Period `json:"period"`
	Total           int64         `json:"total"`
	HasTransactions bool          `json:"has_transactions"`
}

// AddTransaction handles adding a ledger entry. The entry is classified
// by its key.
// @Summary     Add a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input, amount or date"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     422 {object} ErrorResponse "Reserved key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) AddTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.AddTransaction(in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// UpdateTransaction handles replacing the fields of a ledger entry.
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input, amount or date"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     422 {object} ErrorResponse "Reserved key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.UpdateTransaction(transactionID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// DeleteTransaction handles removing a ledger entry.
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// BulkClear handles removing every transaction of a period.
// @Summary     Clear a ledger period
// @Tags        transactions
// @Produce     json
// @Security    ApiKeyAuth
// @Param       period query string true "historical or current"
// @Success     200 {object} map[string]int64 "Number of deleted transactions"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [delete]
func (h *TransactionHandler) BulkClear(c *gin.Context) {
	if c.Query("period") == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidPeriod, "period is required"))
		return
	}
	period, err := parsePeriodQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.transactionService.BulkClear(period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ImportTransactions handles a bulk load. Keys that collide with an
// aggregate category are renamed rather than rejected.
// @Summary     Import transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ImportRequest true "Transactions to import"
// @Success     201 {object} services.ImportResult "Import summary"
// @Failure     400 {object} ErrorResponse "Invalid input, amount or date"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/import [post]
func (h *TransactionHandler) ImportTransactions(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if len(req.Transactions) > maxImportBatch {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "too many transactions in one import"))
		return
	}

	inputs := make([]services.TransactionInput, 0, len(req.Transactions))
	for i := range req.Transactions {
		in, err := req.Transactions[i].toInput()
		if err != nil {
			respondWithError(c, err)
			return
		}
		inputs = append(inputs, in)
	}

	result, err := h.transactionService.ImportTransactions(inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetTransactionByID handles the retrieval of a single ledger entry.
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// ListTransactions handles paging through a ledger period, newest first.
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Param       period    query string false "historical or current (default current)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 500)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	period, err := parsePeriodQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	page.Defaults()

	result, err := h.transactionService.ListTransactions(period, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTotal handles the signed sum of a ledger period.
// @Summary     Ledger total
// @Tags        transactions
// @Produce     json
// @Param       period query string false "historical or current (default current)"
// @Success     200 {object} TotalResponse "Period total"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/total [get]
func (h *TransactionHandler) GetTotal(c *gin.Context) {
	period, err := parsePeriodQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.transactionService.TotalAmount(period)
	if err != nil {
		respondWithError(c, err)
		return
	}
	has, err := h.transactionService.HasTransactions(period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TotalResponse{Period: period, Total: total, HasTransactions: has})
}
