package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
)

const defaultAuditPage = 20

// auditFilter is the query string accepted by ListAudit.
type auditFilter struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	AfterID   int64  `form:"after_id" binding:"omitempty,min=1"`
	ProjectID uint64 `form:"project_id"`
	UserID    uint64 `form:"user_id"`
	Action    string `form:"action"`
	Search    string `form:"q"`
}

// scope narrows the trail newest first; AfterID is the cursor from the
// previous page.
func (f auditFilter) scope(q *gorm.DB) *gorm.DB {
	q = q.Order("id DESC")
	if f.AfterID > 0 {
		q = q.Where("id < ?", f.AfterID)
	}
	if f.ProjectID > 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("(initiator_name LIKE ? OR action LIKE ? OR resource_type LIKE ? OR ip LIKE ?)", like, like, like, like)
	}
	return q
}

// ListAudit pages through access changes. next_cursor is the id of the last
// row returned and is null on the final page.
func ListAudit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f auditFilter
		if err := c.ShouldBindQuery(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if f.Limit == 0 {
			f.Limit = defaultAuditPage
		}

		var logs []models.AuditLog
		if err := db.WithContext(c).Model(&models.AuditLog{}).Scopes(f.scope).Limit(f.Limit + 1).Find(&logs).Error; err != nil {
			fail(c, err)
			return
		}

		var next *int64
		if len(logs) > f.Limit {
			logs = logs[:f.Limit]
			last := logs[len(logs)-1].ID
			next = &last
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "next_cursor": next})
	}
}
