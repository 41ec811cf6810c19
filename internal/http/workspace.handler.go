package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/services"
	"github.com/multinet-app/multinet-api/internal/utils"
)

// getWorkspace resolves the :workspace route parameter and enforces the
// required role. A nil return means a response has already been written.
func getWorkspace(ctx *appcontext.Context, c *gin.Context, required entity.Role) *entity.Workspace {
	userID, err := utils.GetUserIDFromClaims(c)
	if err != nil {
		ctx.Logger.Error("Failed to get user ID from claims", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user ID from claims"})
		return nil
	}

	var workspace entity.Workspace
	if err := ctx.DB.Where("name = ?", c.Param("workspace")).First(&workspace).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return nil
	}

	if !utils.UserHasWorkspaceRole(ctx, userID, &workspace, required) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permission on workspace"})
		return nil
	}

	return &workspace
}

func ListWorkspaces(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.GetUserIDFromClaims(c)
		if err != nil {
			ctx.Logger.Error("Failed to get user ID from claims", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user ID from claims"})
			return
		}

		var workspaces []entity.Workspace
		err = ctx.DB.
			Joins("LEFT JOIN workspace_roles ON workspace_roles.workspace_id = workspaces.id AND workspace_roles.user_id = ?", userID).
			Where("workspaces.public = ? OR workspaces.owner_id = ? OR workspace_roles.id IS NOT NULL", true, userID).
			Distinct().
			Find(&workspaces).Error
		if err != nil {
			ctx.Logger.Error("Failed to list workspaces", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workspaces"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
	}
}

func CreateWorkspace(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.GetUserIDFromClaims(c)
		if err != nil {
			ctx.Logger.Error("Failed to get user ID from claims", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user ID from claims"})
			return
		}

		var body struct {
			Name   string `json:"name" binding:"required"`
			Public bool   `json:"public"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		workspace, err := services.CreateWorkspace(c.Request.Context(), ctx, body.Name, body.Public, userID)
		if err != nil {
			if _, ok := err.(*services.DuplicateNameError); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to create workspace", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
			return
		}

		c.JSON(http.StatusOK, workspace)
	}
}

func GetWorkspace(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}
		c.JSON(http.StatusOK, workspace)
	}
}

func DeleteWorkspace(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleOwner)
		if workspace == nil {
			return
		}

		if err := services.DeleteWorkspace(c.Request.Context(), ctx, workspace); err != nil {
			ctx.Logger.Error("Failed to delete workspace", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workspace"})
			return
		}

		c.JSON(http.StatusNoContent, nil)
	}
}

func SetWorkspacePermission(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleMaintainer)
		if workspace == nil {
			return
		}

		var body struct {
			UserEmail string `json:"user_email" binding:"required"`
			Role      int    `json:"role" binding:"required,min=1,max=3"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user entity.User
		if err := ctx.DB.Where("email = ?", body.UserEmail).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if err := utils.SetUserWorkspaceRole(ctx, user.ID, workspace, entity.Role(body.Role)); err != nil {
			ctx.Logger.Error("Failed to set workspace permission", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set workspace permission"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Permission updated"})
	}
}
