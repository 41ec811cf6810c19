package http

import (
	"github.com/gin-gonic/gin"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/http/middleware"
)

type APIService struct {
	engine  *gin.Engine
	context *appcontext.Context
}

func NewHTTPService(ctx *appcontext.Context) *APIService {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORSMiddleware())

	service := &APIService{
		engine:  engine,
		context: ctx,
	}
	service.setupRoutes()
	return service
}

func (h *APIService) Engine() *gin.Engine {
	return h.engine
}

func (h *APIService) setupRoutes() {
	api := h.engine.Group("/api")
	h.setupAuthRoutes(api)
	h.setupWorkspaceRoutes(api)
}

func (h *APIService) setupAuthRoutes(group *gin.RouterGroup) {
	auth := group.Group("/auth")

	auth.POST("/token", IssueToken(h.context))
}

func (h *APIService) setupWorkspaceRoutes(group *gin.RouterGroup) {
	workspaces := group.Group("/workspaces")
	workspaces.Use(middleware.JWTAuthMiddleware())

	workspaces.GET("/", ListWorkspaces(h.context))
	workspaces.POST("/", CreateWorkspace(h.context))
	workspaces.GET("/:workspace", GetWorkspace(h.context))
	workspaces.DELETE("/:workspace", DeleteWorkspace(h.context))
	workspaces.POST("/:workspace/permissions", SetWorkspacePermission(h.context))

	h.setupTableRoutes(workspaces)
	h.setupNetworkRoutes(workspaces)
	h.setupUploadRoutes(workspaces)
	h.setupQueryRoutes(workspaces)
}

func (h *APIService) setupTableRoutes(group *gin.RouterGroup) {
	tables := group.Group("/:workspace/tables")

	tables.GET("/", ListTables(h.context))
	tables.POST("/", CreateTable(h.context))
	tables.GET("/:table", GetTable(h.context))
	tables.DELETE("/:table", DeleteTable(h.context))
	tables.GET("/:table/rows", GetTableRows(h.context))
	tables.PUT("/:table/rows", UpsertTableRows(h.context))
	tables.DELETE("/:table/rows", DeleteTableRows(h.context))
}

func (h *APIService) setupNetworkRoutes(group *gin.RouterGroup) {
	networks := group.Group("/:workspace/networks")

	networks.GET("/", ListNetworks(h.context))
	networks.POST("/", CreateNetwork(h.context))
	networks.POST("/from_tables", CreateNetworkFromTables(h.context))
	networks.GET("/:network", GetNetwork(h.context))
	networks.DELETE("/:network", DeleteNetwork(h.context))
	networks.GET("/:network/nodes", GetNetworkNodes(h.context))
	networks.GET("/:network/edges", GetNetworkEdges(h.context))
}

func (h *APIService) setupUploadRoutes(group *gin.RouterGroup) {
	uploads := group.Group("/:workspace/uploads")

	uploads.GET("/", ListUploads(h.context))
	uploads.GET("/:upload", GetUpload(h.context))
	uploads.POST("/blob", UploadBlob(h.context))
	uploads.POST("/csv", UploadCSV(h.context))
	uploads.POST("/json_table", UploadJSONTable(h.context))
	uploads.POST("/json_network", UploadJSONNetwork(h.context))
}

func (h *APIService) setupQueryRoutes(group *gin.RouterGroup) {
	queries := group.Group("/:workspace/queries")

	queries.POST("/", CreateQuery(h.context))
	queries.GET("/:query", GetQuery(h.context))
}
