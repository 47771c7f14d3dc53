package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// ProjectAccess is the outcome of an authorization check for one user and project.
type ProjectAccess struct {
	ProjectUUID string
	UserID      uint64
	OwnerID     uint64
	IsOwner     bool
	IsMember    bool
	Role        models.MemberRole
}

// CanEdit reports whether the user may modify project content.
func (a *ProjectAccess) CanEdit() bool {
	return a.IsOwner || a.Role.CanEdit()
}

// CanManageMembers reports whether the user may change roles or remove members.
func (a *ProjectAccess) CanManageMembers() bool {
	return a.IsOwner || a.Role.CanManageMembers()
}

// Authorizer performs the owner-or-member check shared by every project-scoped operation.
type Authorizer struct {
	projectRepo repository.ProjectRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(projectRepo repository.ProjectRepository) *Authorizer {
	return &Authorizer{projectRepo: projectRepo}
}

// Check resolves the user's access to a project. Only member rows with a
// registered user id count; email-only invitations grant nothing here.
func (a *Authorizer) Check(ctx context.Context, userID uint64, projectUUID string) (*ProjectAccess, error) {
	rows, err := a.projectRepo.FindAccessRows(ctx, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project access: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrProjectNotFound
	}

	access := &ProjectAccess{
		ProjectUUID: projectUUID,
		UserID:      userID,
		OwnerID:     rows[0].OwnerID,
	}
	access.IsOwner = access.OwnerID == userID
	if access.IsOwner {
		access.Role = models.RoleOwner
	}

	for _, row := range rows {
		if row.MemberUserID != nil && *row.MemberUserID == userID {
			access.IsMember = true
			if !access.IsOwner && row.Role != nil {
				access.Role = models.MemberRole(*row.Role)
			}
			break
		}
	}

	if !access.IsOwner && !access.IsMember {
		return nil, ErrNotProjectMember
	}
	return access, nil
}
