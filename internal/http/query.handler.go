package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/tasks"
	"github.com/multinet-app/multinet-api/internal/utils"
)

// CreateQuery accepts a read-only AQL query and runs it asynchronously
// against the workspace. Mutating statements are rejected up front.
func CreateQuery(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}

		var body struct {
			Query    string                 `json:"query" binding:"required"`
			BindVars map[string]interface{} `json:"bind_vars"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if tasks.QueryIsMutating(body.Query) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mutating queries are not allowed"})
			return
		}

		userID, err := utils.GetUserIDFromClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		bindVars, err := json.Marshal(body.BindVars)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bind variables"})
			return
		}

		query := entity.AqlQuery{
			WorkspaceID: workspace.ID,
			UserID:      &userID,
			Query:       body.Query,
			BindVars:    datatypes.JSON(bindVars),
			TaskState:   entity.TaskState{Status: entity.TaskPending},
		}
		if err := ctx.DB.Create(&query).Error; err != nil {
			ctx.Logger.Error("Failed to create query record", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create query"})
			return
		}

		if _, err := tasks.Enqueue(c.Request.Context(), ctx.Queue, tasks.TypeExecuteQuery, tasks.ExecuteQueryPayload{QueryID: query.ID}); err != nil {
			ctx.Logger.Error("Failed to enqueue query task", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue query"})
			return
		}

		c.JSON(http.StatusOK, query)
	}
}

func GetQuery(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}

		queryID, err := uuid.Parse(c.Param("query"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query ID"})
			return
		}

		var query entity.AqlQuery
		err = ctx.DB.Where("workspace_id = ? AND id = ?", workspace.ID, queryID).First(&query).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
			return
		}

		c.JSON(http.StatusOK, query)
	}
}
