package arango

import (
	"context"
	"fmt"

	driver "github.com/arangodb/go-driver"
	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/ingest"
)

// Database is a handle on one workspace's backing database.
type Database struct {
	db     driver.Database
	logger *zap.Logger
}

func (d *Database) HasCollection(ctx context.Context, name string) (bool, error) {
	return d.db.CollectionExists(ctx, name)
}

// EnsureCollection creates the named collection if missing. Edge collections
// carry the reserved endpoint fields.
func (d *Database) EnsureCollection(ctx context.Context, name string, edge bool) error {
	exists, err := d.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	options := &driver.CreateCollectionOptions{Type: driver.CollectionTypeDocument}
	if edge {
		options.Type = driver.CollectionTypeEdge
	}
	if _, err := d.db.CreateCollection(ctx, name, options); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// DropCollection removes the named collection if it exists.
func (d *Database) DropCollection(ctx context.Context, name string) error {
	exists, err := d.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	if !exists {
		return nil
	}
	col, err := d.db.Collection(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	if err := col.Remove(ctx); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", name, err)
	}
	return nil
}

// Collection opens a handle on an existing collection.
func (d *Database) Collection(ctx context.Context, name string) (*Collection, error) {
	col, err := d.db.Collection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	return &Collection{col: col}, nil
}

// Query executes an AQL statement and drains the cursor.
func (d *Database) Query(ctx context.Context, statement string, bindVars map[string]interface{}) ([]map[string]interface{}, error) {
	cursor, err := d.db.Query(ctx, statement, bindVars)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer cursor.Close()

	var docs []map[string]interface{}
	for {
		var doc map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &doc); driver.IsNoMoreDocuments(err) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read query result: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Execute runs a compiled query plan for its side effects.
func (d *Database) Execute(ctx context.Context, q *ingest.Query) error {
	cursor, err := d.db.Query(ctx, q.Statement, q.BindVars)
	if err != nil {
		return fmt.Errorf("failed to execute query plan: %w", err)
	}
	return cursor.Close()
}

func (d *Database) HasGraph(ctx context.Context, name string) (bool, error) {
	return d.db.GraphExists(ctx, name)
}

// EnsureGraph registers a graph mapping the edge collection to the node
// collections as both "from" and "to" vertex sets, supporting undirected
// traversal.
func (d *Database) EnsureGraph(ctx context.Context, name, edgeCollection string, nodeCollections []string) error {
	exists, err := d.db.GraphExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check graph %s: %w", name, err)
	}
	if exists {
		return nil
	}

	_, err = d.db.CreateGraphV2(ctx, name, &driver.CreateGraphOptions{
		EdgeDefinitions: []driver.EdgeDefinition{
			{
				Collection: edgeCollection,
				From:       nodeCollections,
				To:         nodeCollections,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create graph %s: %w", name, err)
	}
	return nil
}

// DropGraph removes the named graph if it exists, leaving its collections in
// place.
func (d *Database) DropGraph(ctx context.Context, name string) error {
	exists, err := d.db.GraphExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check graph %s: %w", name, err)
	}
	if !exists {
		return nil
	}
	graph, err := d.db.Graph(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to open graph %s: %w", name, err)
	}
	if err := graph.Remove(ctx); err != nil {
		return fmt.Errorf("failed to drop graph %s: %w", name, err)
	}
	return nil
}

// GraphDefinition returns the node and edge collection names registered for
// a graph.
func (d *Database) GraphDefinition(ctx context.Context, name string) (nodeTables, edgeTables []string, err error) {
	graph, err := d.db.Graph(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open graph %s: %w", name, err)
	}

	vertices, err := graph.VertexCollections(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list vertex collections of %s: %w", name, err)
	}
	for _, v := range vertices {
		nodeTables = append(nodeTables, v.Name())
	}

	edges, _, err := graph.EdgeCollections(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list edge collections of %s: %w", name, err)
	}
	for _, e := range edges {
		edgeTables = append(edgeTables, e.Name())
	}

	return nodeTables, edgeTables, nil
}

// Logger returns the logger used for storage-side warnings.
func (d *Database) Logger() *zap.Logger {
	if d.logger == nil {
		return zap.NewNop()
	}
	return d.logger
}
