package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRowNormalizerValidation(t *testing.T) {
	cases := []struct {
		name    string
		columns map[string]ColumnType
		edge    bool
		node    string
		wantErr string
	}{
		{
			name:    "two primary keys",
			columns: map[string]ColumnType{"a": TypePrimaryKey, "b": TypePrimaryKey},
			wantErr: "multiple primary keys",
		},
		{
			name:    "two sources",
			columns: map[string]ColumnType{"a": TypeEdgeSource, "b": TypeEdgeSource, "c": TypeEdgeTarget},
			edge:    true,
			wantErr: "multiple edge sources",
		},
		{
			name:    "source without target",
			columns: map[string]ColumnType{"a": TypeEdgeSource},
			wantErr: "must be present together",
		},
		{
			name:    "edge table without endpoints",
			columns: map[string]ColumnType{"a": TypeString},
			edge:    true,
			wantErr: "edge table",
		},
		{
			name:    "node table name on a node table",
			columns: map[string]ColumnType{"a": TypeString},
			node:    "people",
			wantErr: "only be supplied for an edge table",
		},
		{
			name:    "node table name without endpoints",
			columns: map[string]ColumnType{"a": TypeString},
			edge:    true,
			node:    "people",
			wantErr: "edge table",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRowNormalizer(tc.columns, tc.edge, tc.node)
			var serr *SchemaValidationError
			require.ErrorAs(t, err, &serr)
			assert.Contains(t, serr.Message, tc.wantErr)
		})
	}
}

func TestNormalizeNodeRow(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{
		"id":     TypePrimaryKey,
		"age":    TypeNumber,
		"active": TypeBoolean,
		"notes":  TypeIgnored,
	}, false, "")
	require.NoError(t, err)

	doc := n.Normalize(map[string]interface{}{
		"id":     float64(7),
		"age":    "41",
		"active": "yes",
		"notes":  "internal",
		"extra":  "kept as-is",
	})
	require.NotNil(t, doc)

	assert.Equal(t, "7", doc[KeyField])
	assert.NotContains(t, doc, "id")
	assert.Equal(t, int64(41), doc["age"])
	assert.Equal(t, true, doc["active"])
	assert.NotContains(t, doc, "notes")
	assert.Equal(t, "kept as-is", doc["extra"])
}

func TestNormalizeDropsRowWithEmptyKey(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{"id": TypePrimaryKey}, false, "")
	require.NoError(t, err)

	assert.Nil(t, n.Normalize(map[string]interface{}{"id": ""}))
	assert.Nil(t, n.Normalize(map[string]interface{}{"id": nil}))
	assert.Nil(t, n.Normalize(map[string]interface{}{"other": "x"}))
}

func TestNormalizeKeepsRawValueOnCoercionFailure(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{"age": TypeNumber}, false, "")
	require.NoError(t, err)

	doc := n.Normalize(map[string]interface{}{"age": "unknown"})
	require.NotNil(t, doc)
	assert.Equal(t, "unknown", doc["age"])
}

func TestNormalizeEdgeRow(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{
		"from": TypeEdgeSource,
		"to":   TypeEdgeTarget,
	}, true, "")
	require.NoError(t, err)

	doc := n.Normalize(map[string]interface{}{
		"from":   "people/alice",
		"to":     "people/bob",
		"weight": "3",
	})
	require.NotNil(t, doc)
	assert.Equal(t, "people/alice", doc[SourceField])
	assert.Equal(t, "people/bob", doc[TargetField])
	assert.NotContains(t, doc, "from")
	assert.NotContains(t, doc, "to")

	// Unqualified endpoints drop the row when no node table is configured.
	assert.Nil(t, n.Normalize(map[string]interface{}{"from": "alice", "to": "people/bob"}))
	// Missing endpoints drop the row.
	assert.Nil(t, n.Normalize(map[string]interface{}{"from": "people/alice"}))
	assert.Nil(t, n.Normalize(map[string]interface{}{"from": "people/alice", "to": ""}))
	// Over-qualified endpoints drop the row.
	assert.Nil(t, n.Normalize(map[string]interface{}{"from": "a/b/c", "to": "people/bob"}))
}

func TestNormalizeEdgeRowWithNodeTable(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{
		"from": TypeEdgeSource,
		"to":   TypeEdgeTarget,
	}, true, "people")
	require.NoError(t, err)

	doc := n.Normalize(map[string]interface{}{"from": "alice", "to": float64(3)})
	require.NotNil(t, doc)
	assert.Equal(t, "people/alice", doc[SourceField])
	assert.Equal(t, "people/3", doc[TargetField])

	// A pre-qualified endpoint must match the configured node table.
	doc = n.Normalize(map[string]interface{}{"from": "people/alice", "to": "bob"})
	require.NotNil(t, doc)
	assert.Equal(t, "people/alice", doc[SourceField])

	assert.Nil(t, n.Normalize(map[string]interface{}{"from": "cities/nyc", "to": "bob"}))
}

func TestNormalizeRenamesReservedEndpointColumns(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{"name": TypeString}, false, "")
	require.NoError(t, err)

	doc := n.Normalize(map[string]interface{}{
		"name":  "x",
		"_from": "people/alice",
		"_to":   "people/bob",
	})
	require.NotNil(t, doc)
	assert.Equal(t, "people/alice", doc["fixed_from"])
	assert.Equal(t, "people/bob", doc["fixed_to"])
	assert.NotContains(t, doc, SourceField)
	assert.NotContains(t, doc, TargetField)
}

func TestAnnotationColumns(t *testing.T) {
	n, err := NewRowNormalizer(map[string]ColumnType{
		"id":    TypePrimaryKey,
		"from":  TypeEdgeSource,
		"to":    TypeEdgeTarget,
		"label": TypeLabel,
		"junk":  TypeIgnored,
	}, true, "")
	require.NoError(t, err)

	cols := n.AnnotationColumns()
	assert.Equal(t, map[string]ColumnType{
		KeyField:    TypePrimaryKey,
		SourceField: TypeEdgeSource,
		TargetField: TypeEdgeTarget,
		"label":     TypeLabel,
	}, cols)
}
