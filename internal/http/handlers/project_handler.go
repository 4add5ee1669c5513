package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

// ListProjects returns the projects the caller can see.
func ListProjects(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var projects []models.Project
		if err := db.WithContext(c).Scopes(rbac.VisibleProjects(p)).Order("projects.id").Find(&projects).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

func GetProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": project})
	}
}

// CreateProject requires the manager to hold PROJECT_MANAGER and the client
// to hold CLIENT as their global roles.
func CreateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Name      string     `json:"name" binding:"required"`
			Location  string     `json:"location"`
			Budget    int64      `json:"budget"`
			ManagerID uint64     `json:"manager_id" binding:"required"`
			ClientID  uint64     `json:"client_id" binding:"required"`
			StartDate *time.Time `json:"start_date"`
			EndDate   *time.Time `json:"end_date"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, ok := principal(c)
		if !ok {
			return
		}

		if err := requireGlobalRole(c, db, in.ManagerID, models.RoleProjectManager, "manager"); err != nil {
			fail(c, err)
			return
		}
		if err := requireGlobalRole(c, db, in.ClientID, models.RoleClient, "client"); err != nil {
			fail(c, err)
			return
		}

		project := models.Project{
			Name:      in.Name,
			Location:  in.Location,
			Budget:    in.Budget,
			Status:    models.ProjectPlanning,
			ManagerID: in.ManagerID,
			ClientID:  in.ClientID,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
		}
		if err := db.WithContext(c).Create(&project).Error; err != nil {
			fail(c, err)
			return
		}
		recordAudit(db, c, p, "project.create", "project", project.ID, &project.ID, nil)

		c.JSON(http.StatusCreated, gin.H{"project": project})
	}
}

func requireGlobalRole(c *gin.Context, db *gorm.DB, userID uint64, want models.Role, label string) error {
	var u models.User
	if err := db.WithContext(c).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbac.Invalid("%s %d does not exist", label, userID)
		}
		return err
	}
	if u.Role != want {
		return rbac.Invalid("%s %d has global role %s, want %s", label, userID, u.Role, want)
	}
	return nil
}

// DeleteProject removes the project and everything scoped to it.
func DeleteProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		err := db.WithContext(c).Transaction(func(tx *gorm.DB) error {
			for _, m := range []any{
				&models.ProjectMember{}, &models.Media{}, &models.Inspection{}, &models.Payment{},
				&models.Material{}, &models.ProjectUpdate{}, &models.Query{},
			} {
				if err := tx.Where("project_id = ?", project.ID).Delete(m).Error; err != nil {
					return err
				}
			}
			return tx.Delete(project).Error
		})
		if err != nil {
			fail(c, err)
			return
		}
		recordAudit(db, c, p, "project.delete", "project", project.ID, &project.ID, map[string]any{"name": project.Name})

		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}

// ProjectContacts returns the people on the project the caller may reach.
func ProjectContacts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, project, ok := projectScope(c, db)
		if !ok {
			return
		}
		parties, err := rbac.Checker{DB: db}.ProjectParties(c, project)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"contacts": rbac.VisibleContacts(p, parties)})
	}
}
