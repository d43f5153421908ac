package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/cashflow"
)

// cashflowForecastHandler handles GET /api/forecast/cashflow?horizon=N.
func (s *Server) cashflowForecastHandler(c *gin.Context) {
	horizon, err := strconv.Atoi(c.DefaultQuery("horizon", "30"))
	if err != nil || horizon <= 0 {
		writeError(c, apperrors.NewValidation("horizon must be a positive integer"))
		return
	}
	balance, err := s.cashflowAuto.Forecast(requestContext(c), horizon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(gin.H{"horizon_days": horizon, "projected_balance": balance}))
}

// cashflowScenarioHandler handles POST /api/forecast/scenario
// {name, adjustments}.
func (s *Server) cashflowScenarioHandler(c *gin.Context) {
	var req forecastScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	horizon, err := strconv.Atoi(c.DefaultQuery("horizon", "30"))
	if err != nil || horizon <= 0 {
		writeError(c, apperrors.NewValidation("horizon must be a positive integer"))
		return
	}
	impact, err := s.cashflowAuto.ApplyScenario(requestContext(c), cashflow.Scenario(req.Adjustments), horizon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(impact))
}

// cashflowAccuracyHandler handles GET /api/forecast/accuracy.
func (s *Server) cashflowAccuracyHandler(c *gin.Context) {
	mape, samples := s.cashflowAuto.Accuracy()
	c.JSON(http.StatusOK, ok(gin.H{"mape_percent": mape, "samples": samples}))
}
