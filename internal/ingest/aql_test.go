package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileNodeTable(t *testing.T) {
	q := CompileNodeTable(TableSpec{Name: "people", Excluded: []string{"ssn"}}, "net--people")

	assert.Equal(t, "people", q.BindVars["@SOURCE"])
	assert.Equal(t, "net--people", q.BindVars["@TARGET"])
	assert.Equal(t, []string{"_id", "_key", "_rev", "ssn"}, q.BindVars["EXCLUDED"])

	assert.Contains(t, q.Statement, "FOR doc IN @@SOURCE")
	assert.Contains(t, q.Statement, "UNSET(doc, @EXCLUDED)")
	assert.Contains(t, q.Statement, "INSERT new INTO @@TARGET")
	assert.NotContains(t, q.Statement, "@@JOINED")
}

func TestCompileNodeTableWithJoin(t *testing.T) {
	q := CompileNodeTable(TableSpec{
		Name: "people",
		Joined: &JoinSpec{
			Table: TableSpec{Name: "memberships", Excluded: []string{"internal"}},
			Link:  Link{Local: "id", Foreign: "person_id"},
		},
	}, "net--people")

	assert.Equal(t, "memberships", q.BindVars["@JOINED"])
	assert.Equal(t, "id", q.BindVars["LOCAL"])
	assert.Equal(t, "person_id", q.BindVars["FOREIGN"])
	assert.Equal(t, []string{"_id", "_key", "_rev", "internal"}, q.BindVars["JOINED_EXCLUDED"])

	assert.Contains(t, q.Statement, "FILTER other.@FOREIGN == doc.@LOCAL")
	// A row with no join match keeps its own fields.
	assert.Contains(t, q.Statement, "MERGE(base, joined != null ? joined : {})")
}

func TestCompileEdgeTable(t *testing.T) {
	q := CompileEdgeTable(EdgeSpec{
		Table:  TableSpec{Name: "connections"},
		Source: Link{Local: "from", Foreign: "id"},
		Target: Link{Local: "to", Foreign: "id"},
	}, "net--connections", "net--people", "net--clubs")

	require.Equal(t, "connections", q.BindVars["@SOURCE"])
	assert.Equal(t, "net--people", q.BindVars["@SOURCE_TABLE"])
	assert.Equal(t, "net--clubs", q.BindVars["@TARGET_TABLE"])
	assert.Equal(t, "from", q.BindVars["SOURCE_LOCAL"])
	assert.Equal(t, "id", q.BindVars["TARGET_FOREIGN"])

	// Edges are an inner join: rows with an unresolved endpoint are skipped.
	assert.Contains(t, q.Statement, "FILTER fromId != null AND toId != null")
	assert.Contains(t, q.Statement, "INSERT MERGE(new, { _from: fromId, _to: toId }) INTO @@TARGET")
}

func TestCompileEdgeTableWithJoin(t *testing.T) {
	q := CompileEdgeTable(EdgeSpec{
		Table: TableSpec{
			Name: "connections",
			Joined: &JoinSpec{
				Table: TableSpec{Name: "details"},
				Link:  Link{Local: "conn_id", Foreign: "id"},
			},
		},
		Source: Link{Local: "from", Foreign: "id"},
		Target: Link{Local: "to", Foreign: "id"},
	}, "net--connections", "net--people", "net--people")

	assert.Equal(t, "details", q.BindVars["@JOINED"])
	assert.Contains(t, q.Statement, "@@JOINED")
	assert.Contains(t, q.Statement, "INSERT MERGE(new, { _from: fromId, _to: toId }) INTO @@TARGET")
}
