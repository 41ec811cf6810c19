package arango

import (
	"context"
	"fmt"

	driver "github.com/arangodb/go-driver"

	"github.com/multinet-app/multinet-api/internal/ingest"
)

// Collection is a handle on one table's backing collection. It satisfies
// ingest.RowSink.
type Collection struct {
	col driver.Collection
}

func (c *Collection) Count(ctx context.Context) (int64, error) {
	count, err := c.col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection %s: %w", c.col.Name(), err)
	}
	return count, nil
}

// InsertOrUpdate bulk-upserts documents: a document whose key already exists
// is replaced, the rest are inserted. Per-document failures are collected
// into the response rather than aborting the batch.
func (c *Collection) InsertOrUpdate(ctx context.Context, docs []map[string]interface{}) (*ingest.RowInsertionResponse, error) {
	if len(docs) == 0 {
		return &ingest.RowInsertionResponse{}, nil
	}

	_, errs, err := c.col.CreateDocuments(driver.WithOverwrite(ctx), docs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert documents into %s: %w", c.col.Name(), err)
	}

	resp := &ingest.RowInsertionResponse{}
	for i, docErr := range errs {
		if docErr != nil {
			resp.Errors = append(resp.Errors, ingest.RowModifyError{Index: i, Message: docErr.Error()})
			continue
		}
		resp.Inserted++
	}
	return resp, nil
}

// DeleteDocuments removes documents by key, collecting per-document errors.
func (c *Collection) DeleteDocuments(ctx context.Context, keys []string) (deleted int, errors []ingest.RowModifyError, err error) {
	if len(keys) == 0 {
		return 0, nil, nil
	}

	_, errs, err := c.col.RemoveDocuments(ctx, keys)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to delete documents from %s: %w", c.col.Name(), err)
	}

	for i, docErr := range errs {
		if docErr != nil {
			errors = append(errors, ingest.RowModifyError{Index: i, Message: docErr.Error()})
			continue
		}
		deleted++
	}
	return deleted, errors, nil
}
