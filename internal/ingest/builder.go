package ingest

import "context"

// DefaultBatchSize bounds the number of documents sent to the storage engine
// per network call. The boundary is purely a performance device; it must not
// change observable results.
const DefaultBatchSize = 100000

// RowModifyError reports a per-document storage failure. These are collected
// and returned as data, never raised: partial success is expected.
type RowModifyError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// RowInsertionResponse summarizes a bulk upsert.
type RowInsertionResponse struct {
	Inserted int              `json:"inserted"`
	Errors   []RowModifyError `json:"errors"`
}

// RowSink is the slice of the storage engine the table builder needs:
// documents with a known key are updated in place, the rest inserted.
type RowSink interface {
	InsertOrUpdate(ctx context.Context, docs []map[string]interface{}) (*RowInsertionResponse, error)
}

// TableBuilder streams normalized documents into a collection in bounded
// batches, accumulating per-document errors across batches.
type TableBuilder struct {
	sink      RowSink
	batchSize int

	pending []map[string]interface{}
	offset  int
	result  RowInsertionResponse
}

func NewTableBuilder(sink RowSink, batchSize int) *TableBuilder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &TableBuilder{sink: sink, batchSize: batchSize}
}

// Add queues a document, flushing a full batch to the sink.
func (b *TableBuilder) Add(ctx context.Context, doc map[string]interface{}) error {
	b.pending = append(b.pending, doc)
	if len(b.pending) == b.batchSize {
		return b.flush(ctx)
	}
	return nil
}

// Flush writes any remaining documents and returns the accumulated result.
func (b *TableBuilder) Flush(ctx context.Context) (*RowInsertionResponse, error) {
	if err := b.flush(ctx); err != nil {
		return nil, err
	}
	return &b.result, nil
}

// BuildRows normalizes raw rows and streams the surviving documents into the
// sink. Empty rows and rows the normalizer drops are skipped, so the returned
// insertion count is the input length minus the skipped rows minus the
// per-document sink errors.
func BuildRows(ctx context.Context, normalizer *RowNormalizer, sink RowSink, batchSize int, rows []map[string]interface{}) (*RowInsertionResponse, error) {
	builder := NewTableBuilder(sink, batchSize)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		doc := normalizer.Normalize(row)
		if doc == nil {
			continue
		}
		if err := builder.Add(ctx, doc); err != nil {
			return nil, err
		}
	}
	return builder.Flush(ctx)
}

func (b *TableBuilder) flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	resp, err := b.sink.InsertOrUpdate(ctx, b.pending)
	if err != nil {
		return err
	}

	b.result.Inserted += resp.Inserted
	for _, e := range resp.Errors {
		b.result.Errors = append(b.result.Errors, RowModifyError{
			Index:   b.offset + e.Index,
			Message: e.Message,
		})
	}

	b.offset += len(b.pending)
	b.pending = b.pending[:0]
	return nil
}
