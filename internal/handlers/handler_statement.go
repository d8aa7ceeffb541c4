package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
	"github.com/openbooks/bookkeeping_app/internal/dto"
	"github.com/openbooks/bookkeeping_app/internal/middleware"
)

const dateLayout = "2006-01-02"

// statementHandler handles HTTP requests for financial statement derivation.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

// registerStatementRoutes registers the read-only statement routes.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade) {
	h := &statementHandler{statementService: statementService}

	statements := rg.Group("/statements")
	{
		statements.GET("/trial-balance", h.trialBalance)
		statements.GET("/income", h.incomeStatement)
		statements.GET("/balance-sheet", h.balanceSheet)
		statements.GET("/retained-earnings", h.retainedEarnings)
	}
}

// parseDate parses an optional yyyy-mm-dd query value; empty yields the zero
// time so the service can enforce its required-parameter errors.
func parseDate(c *gin.Context, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected yyyy-mm-dd: " + value})
		return time.Time{}, false
	}
	return t, true
}

func (h *statementHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.StatementAsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, ok := parseDate(c, params.AsOf)
	if !ok {
		return
	}

	report, err := h.statementService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to derive trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) incomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.StatementPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	start, ok := parseDate(c, params.StartDate)
	if !ok {
		return
	}
	end, ok := parseDate(c, params.EndDate)
	if !ok {
		return
	}

	report, err := h.statementService.IncomeStatement(c.Request.Context(), start, end)
	if err != nil {
		respondWithError(c, logger, err, "Failed to derive income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.StatementAsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, ok := parseDate(c, params.AsOf)
	if !ok {
		return
	}

	report, err := h.statementService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to derive balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) retainedEarnings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.StatementPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	start, ok := parseDate(c, params.StartDate)
	if !ok {
		return
	}
	end, ok := parseDate(c, params.EndDate)
	if !ok {
		return
	}

	report, err := h.statementService.RetainedEarnings(c.Request.Context(), start, end)
	if err != nil {
		respondWithError(c, logger, err, "Failed to derive retained earnings statement")
		return
	}
	c.JSON(http.StatusOK, report)
}
