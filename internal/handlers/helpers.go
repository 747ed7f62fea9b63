package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/money"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/uuid"
)

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid id.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parsePeriodQuery reads the ledger period from the query string,
// defaulting to the current period.
func parsePeriodQuery(c *gin.Context) (models.Period, error) {
	period := models.Period(c.DefaultQuery("period", string(models.PeriodCurrent)))
	if !period.IsValid() {
		return "", apperrors.ErrInvalidPeriod
	}
	return period, nil
}

// parseKindQuery reads an optional kind filter. A missing value yields nil.
func parseKindQuery(c *gin.Context) (*models.CategoryKind, error) {
	v := c.Query("kind")
	if v == "" {
		return nil, nil
	}
	kind := models.CategoryKind(v)
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidKind
	}
	return &kind, nil
}

// requireKindQuery is parseKindQuery for endpoints that need a kind.
func requireKindQuery(c *gin.Context) (models.CategoryKind, error) {
	kind, err := parseKindQuery(c)
	if err != nil {
		return "", err
	}
	if kind == nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidKind, "kind is required")
	}
	return *kind, nil
}

// parseMonthQuery reads the calendar month number. Range checks are left
// to the services so every caller reports the same error.
func parseMonthQuery(c *gin.Context) (int, error) {
	v := c.Query("month")
	if v == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidDate, "month is required")
	}
	month, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidDate, "month must be a number")
	}
	return month, nil
}

// parseAmount converts a display amount to minor units. Blank optional
// amounts are zero.
func parseAmount(text string, required bool) (int64, error) {
	if strings.TrimSpace(text) == "" && !required {
		return 0, nil
	}
	return money.Parse(text)
}

// bindError reports a request body that failed to bind or validate.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
