package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
)

func testContext(t *testing.T) *appcontext.Context {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Workspace{},
		&entity.WorkspaceRole{},
		&entity.Table{},
		&entity.TableTypeAnnotation{},
		&entity.Network{},
		&entity.Upload{},
		&entity.AqlQuery{},
	))

	return &appcontext.Context{DB: db, Logger: zap.NewNop()}
}

func TestTableNameReusableAfterDelete(t *testing.T) {
	app := testContext(t)
	workspaceID := uuid.New()

	table := &entity.Table{Name: "people", WorkspaceID: workspaceID}
	require.NoError(t, app.DB.Create(table).Error)
	require.NoError(t, app.DB.Create(&entity.TableTypeAnnotation{
		TableID: table.ID,
		Column:  "_key",
		Type:    "primary key",
	}).Error)

	require.NoError(t, deleteTableRecord(app, table))

	// The row and its annotations are gone for real, not soft-deleted.
	var count int64
	require.NoError(t, app.DB.Unscoped().Model(&entity.Table{}).
		Where("workspace_id = ? AND name = ?", workspaceID, "people").
		Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, app.DB.Unscoped().Model(&entity.TableTypeAnnotation{}).
		Where("table_id = ?", table.ID).
		Count(&count).Error)
	assert.Zero(t, count)

	// The name no longer occupies the composite unique index.
	recreated := &entity.Table{Name: "people", WorkspaceID: workspaceID}
	require.NoError(t, app.DB.Create(recreated).Error)
}

func TestNetworkNameReusableAfterDelete(t *testing.T) {
	app := testContext(t)
	workspaceID := uuid.New()

	network := &entity.Network{Name: "miserables", WorkspaceID: workspaceID}
	require.NoError(t, app.DB.Create(network).Error)

	require.NoError(t, deleteNetworkRecord(app, network))

	var count int64
	require.NoError(t, app.DB.Unscoped().Model(&entity.Network{}).
		Where("workspace_id = ? AND name = ?", workspaceID, "miserables").
		Count(&count).Error)
	assert.Zero(t, count)

	recreated := &entity.Network{Name: "miserables", WorkspaceID: workspaceID}
	require.NoError(t, app.DB.Create(recreated).Error)
}

func TestWorkspaceNameReusableAfterDelete(t *testing.T) {
	app := testContext(t)
	ownerID := uuid.New()

	workspace := &entity.Workspace{Name: "research", OwnerID: ownerID}
	require.NoError(t, app.DB.Create(workspace).Error)

	table := &entity.Table{Name: "people", WorkspaceID: workspace.ID}
	require.NoError(t, app.DB.Create(table).Error)
	require.NoError(t, app.DB.Create(&entity.TableTypeAnnotation{
		TableID: table.ID,
		Column:  "_key",
		Type:    "primary key",
	}).Error)
	require.NoError(t, app.DB.Create(&entity.Network{Name: "miserables", WorkspaceID: workspace.ID}).Error)
	require.NoError(t, app.DB.Create(&entity.WorkspaceRole{
		WorkspaceID: workspace.ID,
		UserID:      uuid.New(),
		Role:        entity.RoleReader,
	}).Error)
	require.NoError(t, app.DB.Create(&entity.Upload{
		WorkspaceID: workspace.ID,
		Blob:        "uploads/test.csv",
		DataType:    entity.UploadCSV,
	}).Error)

	require.NoError(t, deleteWorkspaceRecord(app, workspace))

	// Everything scoped to the workspace is gone with it.
	var count int64
	for _, model := range []interface{}{
		&entity.Table{}, &entity.Network{}, &entity.WorkspaceRole{}, &entity.Upload{},
	} {
		require.NoError(t, app.DB.Unscoped().Model(model).
			Where("workspace_id = ?", workspace.ID).
			Count(&count).Error)
		assert.Zero(t, count)
	}
	require.NoError(t, app.DB.Unscoped().Model(&entity.TableTypeAnnotation{}).
		Where("table_id = ?", table.ID).
		Count(&count).Error)
	assert.Zero(t, count)

	recreated := &entity.Workspace{Name: "research", OwnerID: ownerID}
	require.NoError(t, app.DB.Create(recreated).Error)
}
