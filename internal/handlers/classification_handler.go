package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

const defaultSuggestionDistance = 3

// ClassificationHandler handles requests that link transactions to categories.
type ClassificationHandler struct {
	resolverService services.ResolverServicer
}

// NewClassificationHandler creates a new ClassificationHandler.
func NewClassificationHandler(resolverService services.ResolverServicer) *ClassificationHandler {
	return &ClassificationHandler{resolverService: resolverService}
}

// AssignByNameRequest represents the request payload for claiming
// unassigned transactions by key.
type AssignByNameRequest struct {
	Name       string              `json:"name" binding:"required"`
	CategoryID string              `json:"category_id" binding:"required,uuid"`
	Kind       models.CategoryKind `json:"kind" binding:"required,category_kind"`
}

// AssignTransactionRequest sets or, with a null category_id, clears the
// category of one transaction.
type AssignTransactionRequest struct {
	CategoryID *string `json:"category_id" binding:"omitempty,uuid"`
}

// PromoteKeyRequest represents the request payload for turning an
// unassigned key into a leaf category.
type PromoteKeyRequest struct {
	Key      string               `json:"key" binding:"required"`
	Kind     *models.CategoryKind `json:"kind" binding:"omitempty,category_kind"`
	ParentID *string              `json:"parent_id" binding:"omitempty,uuid"`
}

// AssignByName handles linking unassigned transactions with a key to a leaf.
// @Summary     Assign by key
// @Tags        classification
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body AssignByNameRequest true "Key, leaf and kind"
// @Success     200 {object} map[string]int64 "Number of transactions assigned"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     422 {object} ErrorResponse "Category is not a leaf"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /classification/assign [post]
func (h *ClassificationHandler) AssignByName(c *gin.Context) {
	var req AssignByNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	assigned, err := h.resolverService.AssignByName(req.Name, req.CategoryID, req.Kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assigned": assigned})
}

// AssignTransaction handles the manual category of a single transaction.
// @Summary     Set transaction category
// @Tags        classification
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body AssignTransactionRequest true "Category, or null to clear"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Transaction or category not found"
// @Failure     422 {object} ErrorResponse "Category is not a leaf of the matching kind"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/category [put]
func (h *ClassificationHandler) AssignTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AssignTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	txn, err := h.resolverService.AssignTransaction(transactionID, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// ReapplyAll handles re-running classification over the whole ledger.
// @Summary     Reapply classification
// @Tags        classification
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} map[string]int64 "Number of transactions linked"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /classification/reapply [post]
func (h *ClassificationHandler) ReapplyAll(c *gin.Context) {
	linked, err := h.resolverService.ReapplyAll()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"linked": linked})
}

// ListUnassignedKeys handles listing the keys no category claims yet.
// @Summary     Unassigned keys
// @Tags        classification
// @Produce     json
// @Success     200 {array} services.UnassignedKey "Unassigned keys"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /classification/unassigned [get]
func (h *ClassificationHandler) ListUnassignedKeys(c *gin.Context) {
	keys, err := h.resolverService.ListUnassignedKeys()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// SuggestKind handles inferring a kind for a key from its amounts.
// @Summary     Suggest kind
// @Tags        classification
// @Produce     json
// @Param       key query string true "Descriptive key"
// @Success     200 {object} map[string]interface{} "Suggested kind, if any"
// @Failure     400 {object} ErrorResponse "Missing key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /classification/suggest-kind [get]
func (h *ClassificationHandler) SuggestKind(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "key is required"))
		return
	}

	kind, ok, err := h.resolverService.SuggestKind(key)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "kind": kind, "found": ok})
}

// SuggestCategories handles proposing existing leaves for unassigned keys.
// @Summary     Suggest categories
// @Tags        classification
// @Produce     json
// @Param       max_distance query int false "Largest edit distance to report (default 3)"
// @Success     200 {array} services.CategorySuggestion "Suggestions"
// @Failure     400 {object} ErrorResponse "Invalid distance"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /classification/suggestions [get]
func (h *ClassificationHandler) SuggestCategories(c *gin.Context) {
	maxDistance := defaultSuggestionDistance
	if v := c.Query("max_distance"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "max_distance must be a non-negative number"))
			return
		}
		maxDistance = d
	}

	suggestions, err := h.resolverService.SuggestCategories(maxDistance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// PromoteKey handles creating a leaf from an unassigned key.
// @Summary     Promote key to category
// @Tags        classification
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body PromoteKeyRequest true "Key and optional kind and parent"
// @Success     201 {object} map[string]interface{} "Created category and number of transactions assigned"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Failure     422 {object} ErrorResponse "Invalid hierarchy"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /classification/promote [post]
func (h *ClassificationHandler) PromoteKey(c *gin.Context) {
	var req PromoteKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	category, assigned, err := h.resolverService.PromoteKey(req.Key, req.Kind, req.ParentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category, "assigned": assigned})
}
