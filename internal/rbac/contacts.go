package rbac

import (
	"context"

	"buildsite/internal/models"
)

type Relation string

const (
	RelationManager  Relation = "manager"
	RelationClient   Relation = "client"
	RelationEngineer Relation = "engineer"
)

type Contact struct {
	UserID   uint64   `json:"user_id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Relation Relation `json:"relation"`
}

// ProjectParties are the people attached to one project.
type ProjectParties struct {
	Manager   *models.User
	Client    *models.User
	Engineers []models.User
}

// VisibleContacts projects the parties down to what p may reach:
//
//	admin            manager, client, engineers
//	project manager  client, engineers
//	site engineer    manager, other engineers
//	client           manager, engineers
//
// The requester never appears in their own list.
func VisibleContacts(p Principal, parties ProjectParties) []Contact {
	var manager, client, engineers bool
	switch p.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		manager, client, engineers = true, true, true
	case models.RoleProjectManager:
		client, engineers = true, true
	case models.RoleSiteEngineer:
		manager, engineers = true, true
	case models.RoleClient:
		manager, engineers = true, true
	default:
		return []Contact{}
	}

	out := []Contact{}
	add := func(u *models.User, rel Relation) {
		if u == nil || u.ID == p.ID {
			return
		}
		out = append(out, Contact{UserID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Relation: rel})
	}
	if manager {
		add(parties.Manager, RelationManager)
	}
	if client {
		add(parties.Client, RelationClient)
	}
	if engineers {
		for i := range parties.Engineers {
			add(&parties.Engineers[i], RelationEngineer)
		}
	}
	return out
}

// ProjectParties loads the manager, client and engineer members of project.
func (c Checker) ProjectParties(ctx context.Context, project *models.Project) (ProjectParties, error) {
	db := c.DB.WithContext(ctx)
	var parties ProjectParties

	var users []models.User
	if err := db.Where("id IN ?", []uint64{project.ManagerID, project.ClientID}).Find(&users).Error; err != nil {
		return parties, err
	}
	for i := range users {
		switch users[i].ID {
		case project.ManagerID:
			parties.Manager = &users[i]
		case project.ClientID:
			parties.Client = &users[i]
		}
	}

	err := db.Model(&models.User{}).
		Joins("JOIN project_members pm ON pm.user_id = users.id").
		Where("pm.project_id = ? AND pm.role = ?", project.ID, models.RoleSiteEngineer).
		Order("users.id").
		Find(&parties.Engineers).Error
	return parties, err
}
