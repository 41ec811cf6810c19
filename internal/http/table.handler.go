package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/arango"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/services"
)

// getTable resolves the :table route parameter within a workspace.
func getTable(ctx *appcontext.Context, c *gin.Context, workspace *entity.Workspace) *entity.Table {
	var table entity.Table
	err := ctx.DB.Where("workspace_id = ? AND name = ?", workspace.ID, c.Param("table")).First(&table).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return nil
	}
	return &table
}

func ListTables(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}

		query := ctx.DB.Where("workspace_id = ?", workspace.ID)
		switch c.Query("type") {
		case "node":
			query = query.Where("edge = ?", false)
		case "edge":
			query = query.Where("edge = ?", true)
		}

		var tables []entity.Table
		if err := query.Find(&tables).Error; err != nil {
			ctx.Logger.Error("Failed to list tables", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tables"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"tables": tables})
	}
}

func CreateTable(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		var body struct {
			Name string `json:"name" binding:"required"`
			Edge bool   `json:"edge"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		table, err := services.CreateTable(c.Request.Context(), ctx, workspace, body.Name, body.Edge)
		if err != nil {
			if _, ok := err.(*services.DuplicateNameError); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to create table", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
			return
		}

		c.JSON(http.StatusOK, table)
	}
}

func GetTable(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}
		table := getTable(ctx, c, workspace)
		if table == nil {
			return
		}

		var annotations []entity.TableTypeAnnotation
		if err := ctx.DB.Where("table_id = ?", table.ID).Find(&annotations).Error; err != nil {
			ctx.Logger.Error("Failed to fetch annotations", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch annotations"})
			return
		}

		columns := make(map[string]string, len(annotations))
		for _, a := range annotations {
			columns[a.Column] = a.Type
		}

		c.JSON(http.StatusOK, gin.H{
			"id":           table.ID,
			"name":         table.Name,
			"edge":         table.Edge,
			"workspace_id": table.WorkspaceID,
			"columns":      columns,
		})
	}
}

func DeleteTable(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}
		table := getTable(ctx, c, workspace)
		if table == nil {
			return
		}

		if err := services.DeleteTable(c.Request.Context(), ctx, workspace, table); err != nil {
			ctx.Logger.Error("Failed to delete table", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete table"})
			return
		}

		c.JSON(http.StatusNoContent, nil)
	}
}

func GetTableRows(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}
		table := getTable(ctx, c, workspace)
		if table == nil {
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		db, err := services.WorkspaceDatabase(c.Request.Context(), ctx, workspace)
		if err != nil {
			ctx.Logger.Error("Failed to open workspace database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open workspace database"})
			return
		}

		query := arango.Paginate(arango.FromCollections([]string{table.Name}), limit, offset)
		docs, err := db.Query(c.Request.Context(), query.Statement, query.BindVars)
		if err != nil {
			ctx.Logger.Error("Failed to fetch rows", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rows"})
			return
		}

		collection, err := db.Collection(c.Request.Context(), table.Name)
		if err != nil {
			ctx.Logger.Error("Failed to open collection", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open collection"})
			return
		}
		count, err := collection.Count(c.Request.Context())
		if err != nil {
			ctx.Logger.Error("Failed to count rows", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count rows"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count, "results": docs})
	}
}

func UpsertTableRows(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}
		table := getTable(ctx, c, workspace)
		if table == nil {
			return
		}

		var rows []map[string]interface{}
		if err := c.ShouldBindJSON(&rows); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		db, err := services.WorkspaceDatabase(c.Request.Context(), ctx, workspace)
		if err != nil {
			ctx.Logger.Error("Failed to open workspace database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open workspace database"})
			return
		}
		collection, err := db.Collection(c.Request.Context(), table.Name)
		if err != nil {
			ctx.Logger.Error("Failed to open collection", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open collection"})
			return
		}

		resp, err := collection.InsertOrUpdate(c.Request.Context(), rows)
		if err != nil {
			ctx.Logger.Error("Failed to upsert rows", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert rows"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func DeleteTableRows(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}
		table := getTable(ctx, c, workspace)
		if table == nil {
			return
		}

		var body struct {
			Keys []string `json:"keys" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		db, err := services.WorkspaceDatabase(c.Request.Context(), ctx, workspace)
		if err != nil {
			ctx.Logger.Error("Failed to open workspace database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open workspace database"})
			return
		}
		collection, err := db.Collection(c.Request.Context(), table.Name)
		if err != nil {
			ctx.Logger.Error("Failed to open collection", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open collection"})
			return
		}

		deleted, rowErrors, err := collection.DeleteDocuments(c.Request.Context(), body.Keys)
		if err != nil {
			ctx.Logger.Error("Failed to delete rows", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rows"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": deleted, "errors": rowErrors})
	}
}
