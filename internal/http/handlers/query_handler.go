package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

func ListQueries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var rows []models.Query
		if err := db.WithContext(c).Where("project_id = ?", project.ID).Order("id DESC").Find(&rows).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"queries": rows})
	}
}

// CreateQuery is open to anyone who can see the project.
func CreateQuery(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Subject string `json:"subject" binding:"required"`
			Body    string `json:"body"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		q := models.Query{ProjectID: project.ID, RaisedByID: p.ID, Subject: in.Subject, Body: in.Body, Status: models.QueryOpen}
		if err := db.WithContext(c).Create(&q).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"query": q})
	}
}

func RespondQuery(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Response string `json:"response" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapCreateProjectUpdate) {
			return
		}
		var q models.Query
		if !findInProject(c, db, &q, "query", project.ID, "qid") {
			return
		}
		if q.Status == models.QueryClosed {
			fail(c, rbac.Invalid("query is closed"))
			return
		}
		responder := p.ID
		if err := db.WithContext(c).Model(&q).Updates(map[string]any{
			"response": in.Response, "responded_by_id": responder, "status": models.QueryAnswered,
		}).Error; err != nil {
			fail(c, err)
			return
		}
		q.Response, q.RespondedByID, q.Status = in.Response, &responder, models.QueryAnswered
		c.JSON(http.StatusOK, gin.H{"query": q})
	}
}

// CloseQuery may be called by whoever raised the query or by an admin.
func CloseQuery(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var q models.Query
		if !findInProject(c, db, &q, "query", project.ID, "qid") {
			return
		}
		if q.RaisedByID != p.ID && !rbac.IsAdmin(p.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the author or an admin may close a query"})
			return
		}
		if q.Status == models.QueryClosed {
			fail(c, rbac.Invalid("query is already closed"))
			return
		}
		if err := db.WithContext(c).Model(&q).Update("status", models.QueryClosed).Error; err != nil {
			fail(c, err)
			return
		}
		q.Status = models.QueryClosed
		c.JSON(http.StatusOK, gin.H{"query": q})
	}
}
