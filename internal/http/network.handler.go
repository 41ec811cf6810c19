package http

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/arango"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/services"
)

func getNetwork(ctx *appcontext.Context, c *gin.Context, workspace *entity.Workspace) *entity.Network {
	var network entity.Network
	err := ctx.DB.Where("workspace_id = ? AND name = ?", workspace.ID, c.Param("network")).First(&network).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Network not found"})
		return nil
	}
	return &network
}

func ListNetworks(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}

		var networks []entity.Network
		if err := ctx.DB.Where("workspace_id = ?", workspace.ID).Find(&networks).Error; err != nil {
			ctx.Logger.Error("Failed to list networks", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list networks"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"networks": networks})
	}
}

// CreateNetwork builds a network over an existing edge table. The node
// tables are derived from the edge table's endpoint references and must all
// exist with every referenced key present.
func CreateNetwork(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		var body struct {
			Name      string `json:"name" binding:"required"`
			EdgeTable string `json:"edge_table" binding:"required"`
			services.NetworkOptions
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var edgeTable entity.Table
		err := ctx.DB.Where("workspace_id = ? AND name = ?", workspace.ID, body.EdgeTable).First(&edgeTable).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Edge table not found"})
			return
		}

		db, err := services.WorkspaceDatabase(c.Request.Context(), ctx, workspace)
		if err != nil {
			ctx.Logger.Error("Failed to open workspace database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open workspace database"})
			return
		}

		referenced, err := services.FindReferencedNodeTables(c.Request.Context(), db, edgeTable.Name)
		if err != nil {
			ctx.Logger.Error("Failed to scan edge table", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan edge table"})
			return
		}
		if len(referenced) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot create network with empty edge table"})
			return
		}

		if err := services.ValidateEdgeTable(c.Request.Context(), ctx, workspace, referenced); err != nil {
			if verr, ok := err.(*services.NetworkValidationError); ok {
				c.JSON(http.StatusBadRequest, verr)
				return
			}
			ctx.Logger.Error("Failed to validate edge table", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate edge table"})
			return
		}

		nodeTables := make([]string, 0, len(referenced))
		for name := range referenced {
			nodeTables = append(nodeTables, name)
		}
		sort.Strings(nodeTables)

		network, err := services.CreateNetwork(c.Request.Context(), ctx, workspace, body.Name, edgeTable.Name, nodeTables, body.NetworkOptions)
		if err != nil {
			if _, ok := err.(*services.DuplicateNameError); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Logger.Error("Failed to create network", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create network"})
			return
		}

		c.JSON(http.StatusOK, network)
	}
}

// CreateNetworkFromTables runs the declarative join path synchronously.
func CreateNetworkFromTables(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleWriter)
		if workspace == nil {
			return
		}

		var body struct {
			services.CSVNetworkSpec
			services.NetworkOptions
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		network, err := services.CreateCSVNetwork(c.Request.Context(), ctx, workspace, body.CSVNetworkSpec, body.NetworkOptions)
		if err != nil {
			if _, ok := err.(*services.DuplicateNameError); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Network already exists"})
				return
			}
			ctx.Logger.Error("Failed to create network from tables", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create network from tables"})
			return
		}

		c.JSON(http.StatusOK, network)
	}
}

func GetNetwork(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}
		network := getNetwork(ctx, c, workspace)
		if network == nil {
			return
		}

		db, err := services.WorkspaceDatabase(c.Request.Context(), ctx, workspace)
		if err != nil {
			ctx.Logger.Error("Failed to open workspace database", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open workspace database"})
			return
		}

		nodeCount, edgeCount, err := services.NetworkCounts(c.Request.Context(), db, network)
		if err != nil {
			ctx.Logger.Error("Failed to count network", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count network"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":           network.ID,
			"name":         network.Name,
			"workspace_id": network.WorkspaceID,
			"node_count":   nodeCount,
			"edge_count":   edgeCount,
		})
	}
}

func DeleteNetwork(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleOwner)
		if workspace == nil {
			return
		}
		network := getNetwork(ctx, c, workspace)
		if network == nil {
			return
		}

		if err := services.DeleteNetwork(c.Request.Context(), ctx, workspace, network); err != nil {
			ctx.Logger.Error("Failed to delete network", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete network"})
			return
		}

		c.JSON(http.StatusNoContent, nil)
	}
}

// networkDocuments serves the paginated node or edge documents of a network.
func networkDocuments(ctx *appcontext.Context, edge bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspace := getWorkspace(ctx, c, entity.RoleReader)
		if workspace == nil {
			return
		}
		network := getNetwork(ctx, c, workspace)
		if network == nil {
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

		tables, err := services.NetworkTables(c.Request.Context(), db, network, edge)
		if err != nil {
			ctx.Logger.Error("Failed to list network tables", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list network tables"})
			return
		}
		if len(tables) == 0 {
			c.JSON(http.StatusOK, gin.H{"results": []interface{}{}})
			return
		}

		query := arango.Paginate(arango.FromCollections(tables), limit, offset)
		docs, err := db.Query(c.Request.Context(), query.Statement, query.BindVars)
		if err != nil {
			ctx.Logger.Error("Failed to fetch network documents", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch network documents"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": docs})
	}
}

func GetNetworkNodes(ctx *appcontext.Context) gin.HandlerFunc {
	return networkDocuments(ctx, false)
}

func GetNetworkEdges(ctx *appcontext.Context) gin.HandlerFunc {
	return networkDocuments(ctx, true)
}
