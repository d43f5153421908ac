package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/periodutil"
)

// startCloseHandler handles POST /api/close/start {period:"YYYY-MM"}.
func (s *Server) startCloseHandler(c *gin.Context) {
	var req startCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	period, err := periodutil.Parse(req.Period)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}

	closing, err := s.monthEnd.StartClose(requestContext(c), period)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(closing))
}

// closeStatusHandler handles GET /api/close/{period}/status.
func (s *Server) closeStatusHandler(c *gin.Context) {
	period, err := periodutil.Parse(c.Param("period"))
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}
	closing, found := s.monthEnd.Get(period)
	if !found {
		notFound(c, "closing")
		return
	}
	c.JSON(http.StatusOK, ok(closing))
}
