package services

import (
	"context"
	"fmt"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/ingest"
)

// CreateTable creates a table's backing collection and its record, in that
// order. The name must be unused within the workspace.
func CreateTable(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, name string, edge bool) (*entity.Table, error) {
	var count int64
	err := app.DB.Model(&entity.Table{}).
		Where("workspace_id = ? AND name = ?", workspace.ID, name).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check table name: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateNameError{Kind: "table", Name: name, Workspace: workspace.Name}
	}

	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureCollection(ctx, name, edge); err != nil {
		return nil, err
	}

	table := &entity.Table{
		Name:        name,
		Edge:        edge,
		WorkspaceID: workspace.ID,
	}
	if err := app.DB.Create(table).Error; err != nil {
		return nil, fmt.Errorf("failed to create table record: %w", err)
	}

	return table, nil
}

// DeleteTable removes the table record, its annotations and the backing
// collection.
func DeleteTable(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, table *entity.Table) error {
	if err := deleteTableRecord(app, table); err != nil {
		return err
	}

	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return err
	}
	return db.DropCollection(ctx, table.Name)
}

// deleteTableRecord hard-deletes a table record and its annotations. A soft
// delete would keep the name occupied in the composite unique index while
// hiding the row from the duplicate check, so the name must be freed for
// real.
func deleteTableRecord(app *appcontext.Context, table *entity.Table) error {
	if err := app.DB.Unscoped().Where("table_id = ?", table.ID).Delete(&entity.TableTypeAnnotation{}).Error; err != nil {
		return fmt.Errorf("failed to delete table annotations: %w", err)
	}
	if err := app.DB.Unscoped().Delete(table).Error; err != nil {
		return fmt.Errorf("failed to delete table record: %w", err)
	}
	return nil
}

// BuildTableOptions declares the shape of an ingested table.
type BuildTableOptions struct {
	Name    string
	Edge    bool
	Columns map[string]ingest.ColumnType
	// NodeTableName qualifies unqualified edge endpoints; only meaningful
	// when Edge is true.
	NodeTableName string
	BatchSize     int
}

// BuildTable runs the full table-construction pipeline: role validation,
// table and annotation creation, then per-row normalization streamed into the
// backing collection in bounded batches. Rows the normalizer drops are
// silently excluded; per-document insert errors come back in the response.
func BuildTable(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, opts BuildTableOptions, rows []map[string]interface{}) (*entity.Table, *ingest.RowInsertionResponse, error) {
	normalizer, err := ingest.NewRowNormalizer(opts.Columns, opts.Edge, opts.NodeTableName)
	if err != nil {
		return nil, nil, err
	}

	table, err := CreateTable(ctx, app, workspace, opts.Name, opts.Edge)
	if err != nil {
		return nil, nil, err
	}

	annotations := normalizer.AnnotationColumns()
	for column, typ := range annotations {
		record := &entity.TableTypeAnnotation{
			TableID: table.ID,
			Column:  column,
			Type:    string(typ),
		}
		if err := app.DB.Create(record).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create type annotation: %w", err)
		}
	}

	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return nil, nil, err
	}
	collection, err := db.Collection(ctx, table.Name)
	if err != nil {
		return nil, nil, err
	}

	resp, err := ingest.BuildRows(ctx, normalizer, collection, opts.BatchSize, rows)
	if err != nil {
		return nil, nil, err
	}

	return table, resp, nil
}
