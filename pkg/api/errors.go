package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
)

// writeError maps err to one of spec.md §7's HTTP status codes via its
// apperrors.Kind, generalizing the teacher's mapServiceError from a fixed
// sentinel-error switch (pkg/api/errors.go) to the taxonomy's Kind enum.
func writeError(c *gin.Context, err error) {
	status, kind := statusForError(err)
	c.AbortWithStatusJSON(status, errorBody{Error: kind, Message: err.Error()})
}

func statusForError(err error) (int, string) {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest, string(kind)
	case apperrors.KindBusinessInvariant:
		return http.StatusBadRequest, string(kind)
	case apperrors.KindUpstreamPermanent:
		return http.StatusBadGateway, string(kind)
	case apperrors.KindUpstreamTransient:
		return http.StatusServiceUnavailable, string(kind)
	case apperrors.KindGuardrail:
		return http.StatusUnprocessableEntity, string(kind)
	case apperrors.KindSuspensionTimeout:
		return http.StatusGone, string(kind)
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// notFound reports a plain not-found condition (e.g. an unknown ID in a
// URL path) that never carries an apperrors.Kind of its own.
func notFound(c *gin.Context, resource string) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "not_found", Message: resource + " not found"})
}

var errMissingAPIKey = errors.New("missing or invalid X-API-Key")
