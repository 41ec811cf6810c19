package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/arango"
	"github.com/multinet-app/multinet-api/internal/entity"
)

// Workspace lifecycle is a two-phase operation: the backing database and the
// record are created together and deleted together, so a record exists
// exactly when its backing database does. Creation provisions the database
// first; deletion removes the record first. A failure between the phases is
// not rolled back (see DESIGN.md).

func CreateWorkspace(ctx context.Context, app *appcontext.Context, name string, public bool, ownerID uuid.UUID) (*entity.Workspace, error) {
	var count int64
	if err := app.DB.Model(&entity.Workspace{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check workspace name: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateNameError{Kind: "workspace", Name: name, Workspace: name}
	}

	workspace := &entity.Workspace{
		Name:         name,
		Public:       public,
		ArangoDBName: entity.NewArangoDBName(),
		OwnerID:      ownerID,
	}

	if err := app.Arango.EnsureDatabase(ctx, workspace.ArangoDBName); err != nil {
		return nil, err
	}

	if err := app.DB.Create(workspace).Error; err != nil {
		return nil, fmt.Errorf("failed to create workspace record: %w", err)
	}

	return workspace, nil
}

func DeleteWorkspace(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace) error {
	if err := deleteWorkspaceRecord(app, workspace); err != nil {
		return err
	}
	return app.Arango.DropDatabase(ctx, workspace.ArangoDBName)
}

// deleteWorkspaceRecord hard-deletes the workspace and every record scoped to
// it. The backing database is dropped as a whole, so the dependent records
// must go with it; soft deletes would also keep the workspace and database
// names occupied in their unique indexes.
func deleteWorkspaceRecord(app *appcontext.Context, workspace *entity.Workspace) error {
	tableIDs := app.DB.Unscoped().Model(&entity.Table{}).Select("id").Where("workspace_id = ?", workspace.ID)
	if err := app.DB.Unscoped().Where("table_id IN (?)", tableIDs).Delete(&entity.TableTypeAnnotation{}).Error; err != nil {
		return fmt.Errorf("failed to delete table annotations: %w", err)
	}

	for _, model := range []interface{}{
		&entity.Table{},
		&entity.Network{},
		&entity.WorkspaceRole{},
		&entity.Upload{},
		&entity.AqlQuery{},
	} {
		if err := app.DB.Unscoped().Where("workspace_id = ?", workspace.ID).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete workspace records: %w", err)
		}
	}

	if err := app.DB.Unscoped().Delete(workspace).Error; err != nil {
		return fmt.Errorf("failed to delete workspace record: %w", err)
	}
	return nil
}

// WorkspaceDatabase opens the workspace's backing database.
func WorkspaceDatabase(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace) (*arango.Database, error) {
	return app.Arango.Database(ctx, workspace.ArangoDBName)
}
