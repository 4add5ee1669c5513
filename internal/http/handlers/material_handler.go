package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

func ListMaterials(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var materials []models.Material
		if err := db.WithContext(c).Where("project_id = ?", project.ID).Order("id").Find(&materials).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"materials": materials})
	}
}

func CreateMaterial(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Name     string  `json:"name" binding:"required"`
			Quantity float64 `json:"quantity" binding:"gte=0"`
			Unit     string  `json:"unit"`
			UnitCost int64   `json:"unit_cost" binding:"gte=0"`
			Supplier string  `json:"supplier"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapManageMaterials) {
			return
		}
		m := models.Material{
			ProjectID:   project.ID,
			Name:        in.Name,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			UnitCost:    in.UnitCost,
			Supplier:    in.Supplier,
			CreatedByID: p.ID,
		}
		if err := db.WithContext(c).Create(&m).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"material": m})
	}
}

func DeleteMaterial(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapManageMaterials) {
			return
		}
		var m models.Material
		if !findInProject(c, db, &m, "material", project.ID, "mid") {
			return
		}
		if err := db.WithContext(c).Delete(&m).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "material deleted"})
	}
}

func ListUpdates(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		var updates []models.ProjectUpdate
		if err := db.WithContext(c).Where("project_id = ?", project.ID).Order("id DESC").Find(&updates).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updates": updates})
	}
}

func CreateUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Body     string `json:"body" binding:"required"`
			Progress int    `json:"progress" binding:"gte=0,lte=100"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, project, ok := projectScope(c, db)
		if !ok || !allowed(c, p, rbac.CapCreateProjectUpdate) {
			return
		}
		u := models.ProjectUpdate{ProjectID: project.ID, AuthorID: p.ID, Body: in.Body, Progress: in.Progress}
		if err := db.WithContext(c).Create(&u).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"update": u})
	}
}
