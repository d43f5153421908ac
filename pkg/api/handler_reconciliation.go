package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/reconcile"
)

// startReconciliationHandler handles POST /api/reconciliation/start
// {journal_id}.
func (s *Server) startReconciliationHandler(c *gin.Context) {
	var req startReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	total, err := s.reconciler.OpenLineCount(requestContext(c), req.JournalID)
	if err != nil {
		writeError(c, err)
		return
	}

	sess := s.reconSess.Start(req.UserID, req.JournalID, total)
	c.JSON(http.StatusOK, ok(sess))
}

// reconciliationSuggestionsHandler handles GET
// /api/reconciliation/{id}/suggestions?page&limit.
func (s *Server) reconciliationSuggestionsHandler(c *gin.Context) {
	sess, found := s.reconSess.Get(c.Param("id"))
	if !found {
		notFound(c, "reconciliation session")
		return
	}

	suggestions, err := s.reconciler.Suggestions(requestContext(c), sess.JournalID, sess.LearnedRules)
	if err != nil {
		writeError(c, err)
		return
	}

	page, limit := paginationParams(c)
	c.JSON(http.StatusOK, ok(paginate(suggestions, page, limit)))
}

// reconciliationMatchHandler handles POST /api/reconciliation/{id}/match
// {bank_line_id, entry_id}.
func (s *Server) reconciliationMatchHandler(c *gin.Context) {
	sess, found := s.reconSess.Get(c.Param("id"))
	if !found {
		notFound(c, "reconciliation session")
		return
	}
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	line := reconcile.BankLine{ID: itoa(req.BankLineID)}
	entry := reconcile.Candidate{ID: itoa(req.EntryID)}
	if err := s.reconSess.Match(sess.ID, line, entry); err != nil {
		writeError(c, apperrors.NewBusinessInvariant(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(gin.H{"status": "matched"}))
}

// reconciliationSkipHandler handles POST /api/reconciliation/{id}/skip.
func (s *Server) reconciliationSkipHandler(c *gin.Context) {
	if err := s.reconSess.Skip(c.Param("id")); err != nil {
		writeError(c, apperrors.NewBusinessInvariant(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(gin.H{"status": "skipped"}))
}
