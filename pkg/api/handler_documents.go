package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
)

// documentProcessHandler handles POST /api/documents/process, a multipart
// file upload per spec.md §6.
func (s *Server) documentProcessHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperrors.NewValidation("file form field is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}

	job, err := s.docs.Process(requestContext(c), fileHeader.Filename, string(content))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(job))
}

// documentGetHandler handles GET /api/documents/{id}.
func (s *Server) documentGetHandler(c *gin.Context) {
	job, found := s.docs.Get(c.Param("id"))
	if !found {
		notFound(c, "document job")
		return
	}
	c.JSON(http.StatusOK, ok(job))
}

// documentCorrectHandler handles POST /api/documents/{id}/correct
// {field, corrected_value}.
func (s *Server) documentCorrectHandler(c *gin.Context) {
	var req documentCorrectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	job, err := s.docs.Correct(c.Param("id"), req.Field, req.CorrectedValue)
	if err != nil {
		notFound(c, "document job")
		return
	}
	c.JSON(http.StatusOK, ok(job))
}
