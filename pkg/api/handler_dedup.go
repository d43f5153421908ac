package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
)

// dedupScanHandler handles POST /api/dedup/scan {scan_type}.
func (s *Server) dedupScanHandler(c *gin.Context) {
	var req dedupScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	scan, err := s.dedupAuto.ScanEntity(requestContext(c), req.ScanType)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(scan))
}

// dedupScansHandler handles GET /api/dedup/scans.
func (s *Server) dedupScansHandler(c *gin.Context) {
	c.JSON(http.StatusOK, ok(s.dedupAuto.Scans()))
}

// dedupGroupHandler handles GET /api/dedup/groups/{id}.
func (s *Server) dedupGroupHandler(c *gin.Context) {
	group, found := s.dedupAuto.Group(c.Param("id"))
	if !found {
		notFound(c, "duplicate group")
		return
	}
	c.JSON(http.StatusOK, ok(group))
}

// dedupMergeHandler handles POST /api/dedup/groups/{id}/merge
// {master_record_id}.
func (s *Server) dedupMergeHandler(c *gin.Context) {
	var req dedupMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	group, err := s.dedupAuto.Merge(requestContext(c), c.Param("id"), req.MasterRecordID)
	if err != nil {
		writeError(c, apperrors.NewBusinessInvariant(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(group))
}
