package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multinet-app/multinet-api/internal/ingest"
)

func TestParseColumnTypes(t *testing.T) {
	types, err := parseColumnTypes(map[string]string{
		"id":   "primary key",
		"name": "label",
		"age":  "number",
	})
	require.NoError(t, err)
	assert.Equal(t, ingest.TypePrimaryKey, types["id"])
	assert.Equal(t, ingest.TypeLabel, types["name"])
	assert.Equal(t, ingest.TypeNumber, types["age"])

	_, err = parseColumnTypes(map[string]string{"id": "uuid"})
	var serr *ingest.SchemaValidationError
	require.ErrorAs(t, err, &serr)
}

func TestFirstRune(t *testing.T) {
	assert.Equal(t, ';', firstRune(";", ','))
	assert.Equal(t, ',', firstRune("", ','))
	assert.Equal(t, '\t', firstRune("\tignored", ','))
}

func TestParseNetworkFile(t *testing.T) {
	nodes, links, err := parseNetworkFile([]byte(`{
		"nodes": [{"id": "a"}, {"id": "b"}],
		"links": [{"source": "a", "target": "b"}]
	}`))
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Len(t, links, 1)

	// "edges" is accepted as an alias for "links".
	nodes, links, err = parseNetworkFile([]byte(`{
		"nodes": [{"id": "a"}],
		"edges": []
	}`))
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Empty(t, links)

	var derr *ingest.DataFormatError

	_, _, err = parseNetworkFile([]byte(`{"nodes": []}`))
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Message, "links")

	_, _, err = parseNetworkFile([]byte(`{"links": []}`))
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Message, "nodes")

	_, _, err = parseNetworkFile([]byte(`not json`))
	require.ErrorAs(t, err, &derr)
}
