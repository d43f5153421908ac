package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// itoa formats an int64 ID the way pkg/reconcile's string-keyed BankLine
// and Candidate IDs expect.
func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// paginationParams reads ?page&limit off c, defaulting to page 1 and a
// limit of 50, the page size spec.md §6's list endpoints use.
func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = 50
	}
	return page, limit
}

// paginate slices items to the (page, limit) window, clamping past the
// end of the slice rather than erroring.
func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
