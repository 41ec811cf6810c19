package utils

import (
	"github.com/google/uuid"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
)

// UserWorkspaceRole returns the effective permission level of a user on a
// workspace, or 0 when the user has none. The workspace owner reports the
// artificial owner level; a public workspace grants reader to everyone.
func UserWorkspaceRole(ctx *appcontext.Context, userID uuid.UUID, workspace *entity.Workspace) entity.Role {
	if workspace.OwnerID == userID {
		return entity.RoleOwner
	}

	var role entity.WorkspaceRole
	err := ctx.DB.Where("workspace_id = ? AND user_id = ?", workspace.ID, userID).First(&role).Error
	if err == nil {
		return role.Role
	}

	if workspace.Public {
		return entity.RoleReader
	}

	return 0
}

// UserHasWorkspaceRole reports whether the user holds at least the required
// role on the workspace.
func UserHasWorkspaceRole(ctx *appcontext.Context, userID uuid.UUID, workspace *entity.Workspace, required entity.Role) bool {
	return UserWorkspaceRole(ctx, userID, workspace) >= required
}

// SetUserWorkspaceRole creates or updates a user's role row. This is the only
// way role rows are written.
func SetUserWorkspaceRole(ctx *appcontext.Context, userID uuid.UUID, workspace *entity.Workspace, role entity.Role) error {
	var current entity.WorkspaceRole
	err := ctx.DB.Where("workspace_id = ? AND user_id = ?", workspace.ID, userID).First(&current).Error
	if err != nil {
		return ctx.DB.Create(&entity.WorkspaceRole{
			WorkspaceID: workspace.ID,
			UserID:      userID,
			Role:        role,
		}).Error
	}

	current.Role = role
	return ctx.DB.Save(&current).Error
}
