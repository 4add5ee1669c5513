package rbac

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"buildsite/internal/models"
)

// Checker answers relationship questions against the database. It keeps no
// state between calls; every answer reflects the rows at lookup time.
type Checker struct{ DB *gorm.DB }

// CanViewProject reports whether the user may see the project. It performs
// at most two lookups and stops at the first match.
func (c Checker) CanViewProject(ctx context.Context, userID uint64, role models.Role, projectID uint64) (bool, error) {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		return true, nil
	case models.RoleSiteEngineer:
		return c.isMember(ctx, projectID, userID, models.RoleSiteEngineer)
	case models.RoleProjectManager:
		ok, err := c.owns(ctx, projectID, "manager_id", userID)
		if err != nil || ok {
			return ok, err
		}
		return c.isMember(ctx, projectID, userID, models.RoleProjectManager)
	case models.RoleClient:
		return c.owns(ctx, projectID, "client_id", userID)
	}
	return false, nil
}

func (c Checker) owns(ctx context.Context, projectID uint64, column string, userID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := c.DB.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND "+column+" = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (c Checker) isMember(ctx context.Context, projectID, userID uint64, role models.Role) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := c.DB.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, role).
		Count(&count).Error
	return count > 0, err
}

// RequireProject loads the project if p may see it. A missing project and an
// invisible one both yield ErrNotFound.
func (c Checker) RequireProject(ctx context.Context, p Principal, projectID uint64) (*models.Project, error) {
	var project models.Project
	if err := c.DB.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("project")
		}
		return nil, err
	}
	ok, err := c.CanViewProject(ctx, p.ID, p.Role, project.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NotFound("project")
	}
	return &project, nil
}

// VisibleProjects is a gorm scope restricting a projects query to the rows
// p may see.
func VisibleProjects(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		members := func(role models.Role) *gorm.DB {
			return db.Session(&gorm.Session{NewDB: true}).
				Model(&models.ProjectMember{}).
				Select("project_id").
				Where("user_id = ? AND role = ?", p.ID, role)
		}
		switch p.Role {
		case models.RoleSuperAdmin, models.RoleAdmin:
			return db
		case models.RoleSiteEngineer:
			return db.Where("projects.id IN (?)", members(models.RoleSiteEngineer))
		case models.RoleProjectManager:
			return db.Where("(projects.manager_id = ? OR projects.id IN (?))", p.ID, members(models.RoleProjectManager))
		case models.RoleClient:
			return db.Where("projects.client_id = ?", p.ID)
		}
		return db.Where("1 = 0")
	}
}
