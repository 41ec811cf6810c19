package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink records batches and fails any document whose "bad" field is set.
type fakeSink struct {
	batches [][]map[string]interface{}
	err     error
}

func (s *fakeSink) InsertOrUpdate(_ context.Context, docs []map[string]interface{}) (*RowInsertionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, docs)

	resp := &RowInsertionResponse{}
	for i, doc := range docs {
		if doc["bad"] == true {
			resp.Errors = append(resp.Errors, RowModifyError{Index: i, Message: "rejected"})
			continue
		}
		resp.Inserted++
	}
	return resp, nil
}

func doc(key string, bad bool) map[string]interface{} {
	return map[string]interface{}{"_key": key, "bad": bad}
}

func TestTableBuilderBatching(t *testing.T) {
	sink := &fakeSink{}
	b := NewTableBuilder(sink, 2)

	for _, d := range []map[string]interface{}{
		doc("a", false), doc("b", false), doc("c", false), doc("d", false), doc("e", false),
	} {
		require.NoError(t, b.Add(context.Background(), d))
	}

	resp, err := b.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Inserted)
	assert.Empty(t, resp.Errors)
	require.Len(t, sink.batches, 3)
	assert.Len(t, sink.batches[0], 2)
	assert.Len(t, sink.batches[1], 2)
	assert.Len(t, sink.batches[2], 1)
}

func TestTableBuilderErrorIndicesSpanBatches(t *testing.T) {
	sink := &fakeSink{}
	b := NewTableBuilder(sink, 2)

	for _, d := range []map[string]interface{}{
		doc("a", false), doc("b", true), doc("c", false), doc("d", true),
	} {
		require.NoError(t, b.Add(context.Background(), d))
	}

	resp, err := b.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Inserted)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 1, resp.Errors[0].Index)
	assert.Equal(t, 3, resp.Errors[1].Index)
}

func TestTableBuilderPropagatesSinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("connection lost")}
	b := NewTableBuilder(sink, 10)

	require.NoError(t, b.Add(context.Background(), doc("a", false)))
	_, err := b.Flush(context.Background())
	assert.EqualError(t, err, "connection lost")
}

func TestBuildRowsCountsSkipsAndErrors(t *testing.T) {
	normalizer, err := NewRowNormalizer(map[string]ColumnType{"id": TypePrimaryKey}, false, "")
	require.NoError(t, err)

	rows := []map[string]interface{}{
		{"id": "a", "bad": false},
		{},
		{"id": "b", "bad": true},
		{"bad": false},
		{"id": "", "bad": false},
		{"id": "c", "bad": false},
	}

	sink := &fakeSink{}
	resp, err := BuildRows(context.Background(), normalizer, sink, 2, rows)
	require.NoError(t, err)

	// One empty row and two rows without a usable key never reach the sink;
	// of the three that do, the sink rejects one.
	assert.Equal(t, 2, resp.Inserted)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 1, resp.Errors[0].Index)
	assert.Equal(t, len(rows)-3, resp.Inserted+len(resp.Errors))

	var sent int
	for _, batch := range sink.batches {
		sent += len(batch)
	}
	assert.Equal(t, 3, sent)
}

func TestTableBuilderEmptyFlush(t *testing.T) {
	sink := &fakeSink{}
	b := NewTableBuilder(sink, 0)

	resp, err := b.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Inserted)
	assert.Empty(t, sink.batches)
}
