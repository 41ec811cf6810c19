package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/ingest"
	"github.com/multinet-app/multinet-api/internal/tasks"
	"github.com/multinet-app/multinet-api/internal/utils"
)

// UploadBlob stages a raw file in the blob store and returns a signed
// field value the ingestion endpoints accept in place of a direct object key.
func UploadBlob(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}
		defer file.Close()

		objectKey := fmt.Sprintf("uploads/%s/%s/%s", workspace.ID, uuid.New(), header.Filename)
		if err := utils.WriteBlob(c.Request.Context(), ctx, objectKey, file); err != nil {
			ctx.Logger.Error("Failed to write blob", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
			return
		}

		fieldValue, err := utils.SignObjectKey(objectKey)
		if err != nil {
			ctx.Logger.Error("Failed to sign object key", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign upload"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"field_value": fieldValue})
	}
}

func tableNameTaken(ctx *appcontext.Context, workspace *entity.Workspace, name string) bool {
	var count int64
	ctx.DB.Model(&entity.Table{}).Where("workspace_id = ? AND name = ?", workspace.ID, name).Count(&count)
	return count > 0
}

func networkNameTaken(ctx *appcontext.Context, workspace *entity.Workspace, name string) bool {
	var count int64
	ctx.DB.Model(&entity.Network{}).Where("workspace_id = ? AND name = ?", workspace.ID, name).Count(&count)
	return count > 0
}

func validColumnTypes(types map[string]string) error {
	for key, t := range types {
		if _, err := ingest.ParseColumnType(t); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
	}
	return nil
}

// dispatchUpload records a pending upload and hands it to the task queue.
func dispatchUpload(ctx *appcontext.Context, c *gin.Context, workspace *entity.Workspace, kind entity.UploadKind, objectKey string, taskType string, build func(uploadID uuid.UUID) interface{}) {
	userID, err := utils.GetUserIDFromClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return
	}

	upload := entity.Upload{
		WorkspaceID: workspace.ID,
		UserID:      &userID,
		Blob:        objectKey,
		DataType:    kind,
		TaskState:   entity.TaskState{Status: entity.TaskPending},
	}
	if err := ctx.DB.Create(&upload).Error; err != nil {
		ctx.Logger.Error("Failed to create upload record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload"})
		return
	}

	if _, err := tasks.Enqueue(c.Request.Context(), ctx.Queue, taskType, build(upload.ID)); err != nil {
		ctx.Logger.Error("Failed to enqueue upload task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue upload"})
		return
	}

	c.JSON(http.StatusOK, upload)
}

func UploadCSV(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		var body struct {
			FieldValue string             `json:"field_value" binding:"required"`
			TableName  string             `json:"table_name" binding:"required"`
			Edge       bool               `json:"edge"`
			Columns    []tasks.ColumnSpec `json:"columns" binding:"required"`
			Delimiter  string             `json:"delimiter"`
			QuoteChar  string             `json:"quotechar"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		objectKey, err := utils.ObjectKeyFromToken(body.FieldValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field value"})
			return
		}

		if tableNameTaken(ctx, workspace, body.TableName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Table %s already exists", body.TableName)})
			return
		}
		for _, col := range body.Columns {
			if _, err := ingest.ParseColumnType(col.Type); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		dispatchUpload(ctx, c, workspace, entity.UploadCSV, objectKey, tasks.TypeProcessCSV, func(uploadID uuid.UUID) interface{} {
			return tasks.ProcessCSVPayload{
				UploadID:  uploadID,
				TableName: body.TableName,
				Edge:      body.Edge,
				Columns:   body.Columns,
				Delimiter: body.Delimiter,
				QuoteChar: body.QuoteChar,
			}
		})
	}
}

func UploadJSONTable(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		var body struct {
			FieldValue string            `json:"field_value" binding:"required"`
			TableName  string            `json:"table_name" binding:"required"`
			Edge       bool              `json:"edge"`
			Columns    map[string]string `json:"columns"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		objectKey, err := utils.ObjectKeyFromToken(body.FieldValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field value"})
			return
		}

		if tableNameTaken(ctx, workspace, body.TableName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Table %s already exists", body.TableName)})
			return
		}
		if err := validColumnTypes(body.Columns); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dispatchUpload(ctx, c, workspace, entity.UploadJSONTable, objectKey, tasks.TypeProcessJSONTable, func(uploadID uuid.UUID) interface{} {
			return tasks.ProcessJSONTablePayload{
				UploadID:  uploadID,
				TableName: body.TableName,
				Edge:      body.Edge,
				Columns:   body.Columns,
			}
		})
	}
}

func UploadJSONNetwork(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		var body struct {
			FieldValue    string            `json:"field_value" binding:"required"`
			NetworkName   string            `json:"network_name" binding:"required"`
			NodeTableName string            `json:"node_table_name"`
			EdgeTableName string            `json:"edge_table_name"`
			NodeColumns   map[string]string `json:"node_columns"`
			EdgeColumns   map[string]string `json:"edge_columns"`
			RunAnalysis   bool              `json:"run_analysis"`
			ComputeDegree bool              `json:"compute_degree"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		objectKey, err := utils.ObjectKeyFromToken(body.FieldValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field value"})
			return
		}

		nodeTableName := body.NodeTableName
		if nodeTableName == "" {
			nodeTableName = body.NetworkName + "_nodes"
		}
		edgeTableName := body.EdgeTableName
		if edgeTableName == "" {
			edgeTableName = body.NetworkName + "_edges"
		}
		if networkNameTaken(ctx, workspace, body.NetworkName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Network %s already exists", body.NetworkName)})
			return
		}
		for _, name := range []string{nodeTableName, edgeTableName} {
			if tableNameTaken(ctx, workspace, name) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Table %s already exists", name)})
				return
			}
		}
		if err := validColumnTypes(body.NodeColumns); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validColumnTypes(body.EdgeColumns); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dispatchUpload(ctx, c, workspace, entity.UploadJSONNetwork, objectKey, tasks.TypeProcessJSONNetwork, func(uploadID uuid.UUID) interface{} {
			return tasks.ProcessJSONNetworkPayload{
				UploadID:      uploadID,
				NetworkName:   body.NetworkName,
				NodeTableName: nodeTableName,
				EdgeTableName: edgeTableName,
				NodeColumns:   body.NodeColumns,
				EdgeColumns:   body.EdgeColumns,
				RunAnalysis:   body.RunAnalysis,
				ComputeDegree: body.ComputeDegree,
			}
		})
	}
}

func ListUploads(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}

		var uploads []entity.Upload
		if err := ctx.DB.Where("workspace_id = ?", workspace.ID).Order("created_at DESC").Find(&uploads).Error; err != nil {
			ctx.Logger.Error("Failed to list uploads", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list uploads"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"uploads": uploads})
	}
}

func GetUpload(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}

		uploadID, err := uuid.Parse(c.Param("upload"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload ID"})
			return
		}

		var upload entity.Upload
		err = ctx.DB.Where("workspace_id = ? AND id = ?", workspace.ID, uploadID).First(&upload).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
			return
		}

		c.JSON(http.StatusOK, upload)
	}
}
