package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/reportbuilder"
)

// reportRunHandler handles POST /api/reports
// {model, fields, group_by, filters}.
func (s *Server) reportRunHandler(c *gin.Context) {
	var req reportQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	job, err := s.reports.Run(requestContext(c), reportbuilder.Query{
		Model:   req.Model,
		Fields:  req.Fields,
		GroupBy: req.GroupBy,
		Filters: req.Filters,
	})
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(job))
}

// reportGetHandler handles GET /api/reports/{id}.
func (s *Server) reportGetHandler(c *gin.Context) {
	job, found := s.reports.Get(c.Param("id"))
	if !found {
		notFound(c, "report job")
		return
	}
	c.JSON(http.StatusOK, ok(job))
}
