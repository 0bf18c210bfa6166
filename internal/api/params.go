package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classfund/treasury-server/internal/models"
)

const dateLayout = "2006-01-02"

// parseID reads the numeric path parameter
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parseRecordFilters reads the listing query parameters for transactions.
// Malformed dates are ignored rather than rejected.
func parseRecordFilters(c *gin.Context) models.RecordFilters {
	filters := models.RecordFilters{
		TransactionType: c.Query("transaction_type"),
		Search:          c.Query("search"),
		SortBy:          c.Query("sort_by"),
		SortDirection:   c.Query("sort_direction"),
		Page:            queryInt(c, "page", 1),
		PerPage:         queryInt(c, "per_page", 10),
	}

	filters.StartDate = parseStartDate(c.Query("start_date"))
	filters.EndDate = parseEndDate(c.Query("end_date"))

	if filters.TransactionType != "credit" && filters.TransactionType != "debit" {
		filters.TransactionType = ""
	}

	return filters
}

func parseAuditFilters(c *gin.Context) models.AuditFilters {
	filters := models.AuditFilters{
		ActionType:    c.Query("action_type"),
		TableName:     c.Query("table_name"),
		Search:        c.Query("search"),
		SortBy:        c.Query("sort_by"),
		SortDirection: c.Query("sort_direction"),
		Page:          queryInt(c, "page", 1),
		PerPage:       queryInt(c, "per_page", 10),
	}

	if userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64); err == nil {
		filters.UserID = userID
	}

	filters.StartDate = parseStartDate(c.Query("start_date"))
	filters.EndDate = parseEndDate(c.Query("end_date"))

	return filters
}

func parseUserFilters(c *gin.Context) models.UserFilters {
	filters := models.UserFilters{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}

	if raw := c.Query("is_active"); raw != "" {
		if isActive, err := strconv.ParseBool(raw); err == nil {
			filters.IsActive = &isActive
		}
	}

	return filters
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if value, err := strconv.Atoi(c.Query(key)); err == nil {
		return value
	}
	return defaultValue
}

func parseStartDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &d
}

// parseEndDate pushes the bound to the end of the given day so the whole
// day is included.
func parseEndDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	end := d.Add(24*time.Hour - time.Nanosecond)
	return &end
}
