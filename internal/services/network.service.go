package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/arango"
	"github.com/multinet-app/multinet-api/internal/entity"
)

// NetworkOptions controls the optional derived computations run after a
// network is registered.
type NetworkOptions struct {
	RunAnalysis   bool `json:"run_analysis"`
	ComputeDegree bool `json:"compute_degree"`
}

// CreateNetwork registers the backing graph and then creates the Network
// record; if graph registration fails no record is created. The edge table
// and node tables must already exist. Analytics and degree computation are
// best-effort: failures are logged and never abort network creation.
func CreateNetwork(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, name, edgeTableName string, nodeTableNames []string, opts NetworkOptions) (*entity.Network, error) {
	var count int64
	err := app.DB.Model(&entity.Network{}).
		Where("workspace_id = ? AND name = ?", workspace.ID, name).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check network name: %w", err)
	}
	if count > 0 {
		return nil, &DuplicateNameError{Kind: "network", Name: name, Workspace: workspace.Name}
	}

	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureGraph(ctx, name, edgeTableName, nodeTableNames); err != nil {
		return nil, err
	}

	network := &entity.Network{
		Name:        name,
		WorkspaceID: workspace.ID,
	}
	if err := app.DB.Create(network).Error; err != nil {
		return nil, fmt.Errorf("failed to create network record: %w", err)
	}

	// With no node tables there is nothing to measure.
	if len(nodeTableNames) == 0 {
		return network, nil
	}

	if opts.RunAnalysis {
		for _, algorithm := range arango.Algorithms {
			if err := db.RunAnalytics(ctx, name, algorithm); err != nil {
				app.Logger.Warn("analytics job failed",
					zap.String("network", name),
					zap.String("algorithm", algorithm.Name),
					zap.Error(err),
				)
			}
		}
	}

	if opts.ComputeDegree {
		for _, nodeTable := range nodeTableNames {
			if err := db.ComputeDegree(ctx, name, nodeTable); err != nil {
				app.Logger.Warn("degree computation failed",
					zap.String("network", name),
					zap.String("node_table", nodeTable),
					zap.Error(err),
				)
			}
		}
	}

	return network, nil
}

// DeleteNetwork removes the network record and then its backing graph.
func DeleteNetwork(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, network *entity.Network) error {
	if err := deleteNetworkRecord(app, network); err != nil {
		return err
	}

	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return err
	}
	return db.DropGraph(ctx, network.Name)
}

// deleteNetworkRecord hard-deletes the record so the name is immediately
// reusable; a soft-deleted row would still hold the composite unique index.
func deleteNetworkRecord(app *appcontext.Context, network *entity.Network) error {
	if err := app.DB.Unscoped().Delete(network).Error; err != nil {
		return fmt.Errorf("failed to delete network record: %w", err)
	}
	return nil
}

// FindReferencedNodeTables scans an edge table's endpoint references and
// returns, per referenced node table, the set of keys referenced. Missing or
// malformed references are ignored.
func FindReferencedNodeTables(ctx context.Context, db *arango.Database, edgeTableName string) (map[string]map[string]bool, error) {
	docs, err := db.Query(ctx, "FOR doc IN @@EDGES RETURN { from: doc._from, to: doc._to }", map[string]interface{}{
		"@EDGES": edgeTableName,
	})
	if err != nil {
		return nil, err
	}

	referenced := map[string]map[string]bool{}
	for _, doc := range docs {
		for _, field := range []string{"from", "to"} {
			end, ok := doc[field].(string)
			if !ok {
				continue
			}
			parts := strings.Split(end, "/")
			if len(parts) != 2 {
				continue
			}
			table, key := parts[0], parts[1]
			if referenced[table] == nil {
				referenced[table] = map[string]bool{}
			}
			if key != "" {
				referenced[table][key] = true
			}
		}
	}

	return referenced, nil
}

// NetworkValidationError lists the referential problems that prevent a
// network from being created out of an edge table.
type NetworkValidationError struct {
	MissingNodeTables []string            `json:"missing_node_tables"`
	MissingTableKeys  map[string][]string `json:"missing_table_keys"`
}

func (e *NetworkValidationError) Error() string {
	return "edge table references missing node tables or keys"
}

// ValidateEdgeTable checks that every node table referenced by an edge table
// exists in the workspace and contains every referenced key.
func ValidateEdgeTable(ctx context.Context, app *appcontext.Context, workspace *entity.Workspace, referenced map[string]map[string]bool) error {
	db, err := WorkspaceDatabase(ctx, app, workspace)
	if err != nil {
		return err
	}

	result := &NetworkValidationError{MissingTableKeys: map[string][]string{}}
	for tableName, keys := range referenced {
		var count int64
		err := app.DB.Model(&entity.Table{}).
			Where("workspace_id = ? AND name = ?", workspace.ID, tableName).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check node table: %w", err)
		}
		if count == 0 {
			result.MissingNodeTables = append(result.MissingNodeTables, tableName)
			continue
		}

		keyList := make([]string, 0, len(keys))
		for key := range keys {
			keyList = append(keyList, key)
		}
		sort.Strings(keyList)

		missing, err := db.Query(ctx, missingKeysQuery, map[string]interface{}{
			"@TABLE": tableName,
			"keys":   keyList,
		})
		if err != nil {
			return err
		}
		for _, doc := range missing {
			if key, ok := doc["key"].(string); ok {
				result.MissingTableKeys[tableName] = append(result.MissingTableKeys[tableName], key)
			}
		}
	}

	if len(result.MissingNodeTables) > 0 || len(result.MissingTableKeys) > 0 {
		sort.Strings(result.MissingNodeTables)
		return result
	}
	return nil
}

const missingKeysQuery = `
	FOR key IN @keys
		FILTER LENGTH(FOR doc IN @@TABLE FILTER doc._key == key LIMIT 1 RETURN 1) == 0
		RETURN { key: key }
`

// NetworkCounts returns the node and edge document counts for a network by
// summing its registered collections.
func NetworkCounts(ctx context.Context, db *arango.Database, network *entity.Network) (nodeCount, edgeCount int64, err error) {
	nodeTables, edgeTables, err := db.GraphDefinition(ctx, network.Name)
	if err != nil {
		return 0, 0, err
	}

	for _, name := range nodeTables {
		coll, err := db.Collection(ctx, name)
		if err != nil {
			return 0, 0, err
		}
		count, err := coll.Count(ctx)
		if err != nil {
			return 0, 0, err
		}
		nodeCount += count
	}

	for _, name := range edgeTables {
		coll, err := db.Collection(ctx, name)
		if err != nil {
			return 0, 0, err
		}
		count, err := coll.Count(ctx)
		if err != nil {
			return 0, 0, err
		}
		edgeCount += count
	}

	return nodeCount, edgeCount, nil
}

// NetworkTables lists the node or edge collections registered for a network.
func NetworkTables(ctx context.Context, db *arango.Database, network *entity.Network, edge bool) ([]string, error) {
	nodeTables, edgeTables, err := db.GraphDefinition(ctx, network.Name)
	if err != nil {
		return nil, err
	}
	if edge {
		return edgeTables, nil
	}
	return nodeTables, nil
}
