package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/VaclavOrsag/bakalarka-rozpocet/internal/errors"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/models"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
)

func setupAnalysisRouter(handler *AnalysisHandler) *gin.Engine {
	r := gin.New()
	r.POST("/pivot", handler.Pivot)
	r.GET("/categories/:id/performance", handler.GetCategoryPerformance)
	r.GET("/performance", handler.ListPerformance)
	r.GET("/performance/compare", handler.CompareMonth)
	return r
}

func TestAnalysisHandler_Pivot(t *testing.T) {
	t.Run("returns rows and hierarchy", func(t *testing.T) {
		var got services.PivotRequest
		pivot := &mockPivotService{
			pivotFn: func(req services.PivotRequest) (*services.PivotResult, error) {
				got = req
				return &services.PivotResult{
					Dimensions: req.Dimensions,
					Rows: []services.PivotRow{
						{KeyPath: []string{"Food", "Anna"}, Total: -300},
						{KeyPath: []string{"Food", "Petr"}, Total: -200},
						{KeyPath: []string{"Rent", "Anna"}, Total: -900},
					},
					GrandTotal: -1400,
				}, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(pivot, &mockPerformanceService{}))

		rec := doRequest(r, http.MethodPost, "/pivot",
			`{"dimensions":["category","responsible-person"],"period":"current","kind":"expense"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.Dimensions) != 2 || got.Kind == nil || *got.Kind != models.CategoryKindExpense {
			t.Errorf("unexpected request %+v", got)
		}
		result := parseJSON(t, rec)
		if result["grand_total"] != float64(-1400) {
			t.Errorf("expected grand total -1400, got %v", result["grand_total"])
		}
		hierarchy := result["hierarchy"].([]interface{})
		if len(hierarchy) != 2 {
			t.Fatalf("expected 2 top-level nodes, got %d", len(hierarchy))
		}
		if food := hierarchy[0].(map[string]interface{}); food["key"] != "Food" || food["total"] != float64(-500) {
			t.Errorf("unexpected first node %v", food)
		}
	})

	t.Run("returns 400 INVALID_DIMENSION on unknown dimension", func(t *testing.T) {
		pivot := &mockPivotService{
			pivotFn: func(services.PivotRequest) (*services.PivotResult, error) {
				t.Fatal("service should not be called")
				return nil, nil
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(pivot, &mockPerformanceService{}))
		rec := doRequest(r, http.MethodPost, "/pivot", `{"dimensions":["colour"],"period":"current"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_DIMENSION")
	})

	t.Run("passes service dimension errors through", func(t *testing.T) {
		pivot := &mockPivotService{
			pivotFn: func(services.PivotRequest) (*services.PivotResult, error) {
				return nil, apperrors.ErrInvalidDimension
			},
		}
		r := setupAnalysisRouter(NewAnalysisHandler(pivot, &mockPerformanceService{}))
		rec := doRequest(r, http.MethodPost, "/pivot", `{"dimensions":["memo","memo"],"period":"current"}`)
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_DIMENSION")
	})

	t.Run("requires a period", func(t *testing.T) {
		r := setupAnalysisRouter(NewAnalysisHandler(&mockPivotService{}, &mockPerformanceService{}))
		assertErrorCode(t, doRequest(r, http.MethodPost, "/pivot", `{"dimensions":[]}`), http.StatusBadRequest, "INVALID_INPUT")
	})
}

func TestAnalysisHandler_Performance(t *testing.T) {
	perf := &mockPerformanceService{
		performanceFn: func(categoryID string, month int) (*services.Performance, error) {
			if month == 13 {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidDate, "month must be between 1 and 12")
			}
			return &services.Performance{
				CategoryID: categoryID,
				Month:      month,
				Total:      services.NewRatio(100, 0),
				Worst:      services.NewRatio(100, 0),
			}, nil
		},
		performanceAllFn: func(month int, kind *models.CategoryKind) ([]services.Performance, error) {
			if kind == nil || *kind != models.CategoryKindIncome {
				t.Errorf("expected income filter, got %v", kind)
			}
			return []services.Performance{{Month: month}}, nil
		},
		compareMonthFn: func(month int, kind models.CategoryKind) ([]services.MonthComparison, error) {
			return []services.MonthComparison{{Name: "Rent", Historical: 900, Current: 950}}, nil
		},
	}
	r := setupAnalysisRouter(NewAnalysisHandler(&mockPivotService{}, perf))

	t.Run("single category", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/categories/"+testCategoryID+"/performance?month=3", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		p := parseJSON(t, rec)["performance"].(map[string]interface{})
		if p["month"] != float64(3) {
			t.Errorf("expected month 3, got %v", p["month"])
		}
		if total := p["total_pct"].(map[string]interface{}); total["kind"] != "new" {
			t.Errorf("expected a new ratio, got %v", total)
		}
	})

	t.Run("month out of range", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/categories/"+testCategoryID+"/performance?month=13", "")
		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_DATE")
	})

	t.Run("month is required", func(t *testing.T) {
		assertErrorCode(t, doRequest(r, http.MethodGet, "/performance", ""), http.StatusBadRequest, "INVALID_DATE")
	})

	t.Run("month must be numeric", func(t *testing.T) {
		assertErrorCode(t, doRequest(r, http.MethodGet, "/performance?month=march", ""), http.StatusBadRequest, "INVALID_DATE")
	})

	t.Run("all categories with kind filter", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/performance?month=5&kind=income", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rows := parseJSON(t, rec)["performance"].([]interface{}); len(rows) != 1 {
			t.Errorf("expected 1 row, got %d", len(rows))
		}
	})

	t.Run("compare month", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/performance/compare?month=1&kind=expense", "")
		rows := parseJSON(t, rec)["comparison"].([]interface{})
		if len(rows) != 1 || rows[0].(map[string]interface{})["current"] != float64(950) {
			t.Errorf("unexpected comparison %v", rows)
		}
	})

	t.Run("compare month requires a kind", func(t *testing.T) {
		assertErrorCode(t, doRequest(r, http.MethodGet, "/performance/compare?month=1", ""), http.StatusBadRequest, "INVALID_KIND")
	})
}
