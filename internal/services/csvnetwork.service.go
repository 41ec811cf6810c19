package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/ingest"
)

// CSVNetworkSpec is the declarative multi-table join specification used to
// build a network out of pre-existing tables. Unlike blob uploads it is
// executed synchronously in the request path.
type CSVNetworkSpec struct {
	Name        string           `json:"name" binding:"required"`
	Edge        ingest.EdgeSpec  `json:"edge" binding:"required"`
	SourceTable ingest.TableSpec `json:"source_table" binding:"required"`
	TargetTable ingest.TableSpec `json:"target_table" binding:"required"`
}

// derivedTableName names the tables a CSV network builds from its inputs.
func derivedTableName(networkName, tableName string) string {
	return fmt.Sprintf("%s--%s", networkName, tableName)
}

// CreateCSVNetwork materializes the join specification: it compiles each
// table spec to a storage-side query plan, executes the plans into newly
// created tables, and registers the network over them. Edge rows whose
// source or target matches no node document are dropped by the plan itself.
func CreateCSVNetwork(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, spec CSVNetworkSpec, opts NetworkOptions) (*entity.Network, error) {
	var count int64
	err := app.DB.Model(&entity.Network{}).
		Where("workspace_id = ? AND name = ?", workspace.ID, spec.Name).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check network name: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateNameError{Kind: "network", Name: spec.Name, Workspace: workspace.Name}
	}

	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return nil, err
	}

	sourceName := derivedTableName(spec.Name, spec.SourceTable.Name)
	targetName := derivedTableName(spec.Name, spec.TargetTable.Name)

	if _, err := CreateTable(ctx, app, workspace, sourceName, false); err != nil {
		return nil, err
	}
	if err := db.Execute(ctx, ingest.CompileNodeTable(spec.SourceTable, sourceName)); err != nil {
		return nil, err
	}

	// The source and target specs may name the same underlying table; the
	// derived table is only built once.
	if targetName != sourceName {
		if _, err := CreateTable(ctx, app, workspace, targetName, false); err != nil {
			return nil, err
		}
		if err := db.Execute(ctx, ingest.CompileNodeTable(spec.TargetTable, targetName)); err != nil {
			return nil, err
		}
	}

	edgeName := derivedTableName(spec.Name, spec.Edge.Table.Name)
	if _, err := CreateTable(ctx, app, workspace, edgeName, true); err != nil {
		return nil, err
	}
	if err := db.Execute(ctx, ingest.CompileEdgeTable(spec.Edge, edgeName, sourceName, targetName)); err != nil {
		return nil, err
	}

	nodeTables := []string{sourceName}
	if targetName != sourceName {
		nodeTables = append(nodeTables, targetName)
	}
	sort.Strings(nodeTables)

	return CreateNetwork(ctx, app, workspace, spec.Name, edgeName, nodeTables, opts)
}
