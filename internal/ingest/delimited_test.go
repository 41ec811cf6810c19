package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDelimited(t *testing.T) {
	data := []byte("name,age\nalice,34\nbob,29\n")
	rows, err := ReadDelimited(data, ',', '"')
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]interface{}{"name": "alice", "age": "34"}, rows[0])
	assert.Equal(t, map[string]interface{}{"name": "bob", "age": "29"}, rows[1])
}

func TestReadDelimitedQuoting(t *testing.T) {
	data := []byte("name,quote\n\"smith, jane\",\"she said \"\"hi\"\"\"\n")
	rows, err := ReadDelimited(data, ',', '"')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "smith, jane", rows[0]["name"])
	assert.Equal(t, `she said "hi"`, rows[0]["quote"])
}

func TestReadDelimitedCustomDialect(t *testing.T) {
	data := []byte("name|bio\n'o''brien'|'likes | pipes'\n")
	rows, err := ReadDelimited(data, '|', '\'')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "o'brien", rows[0]["name"])
	assert.Equal(t, "likes | pipes", rows[0]["bio"])
}

func TestReadDelimitedNewlineInQuotedField(t *testing.T) {
	data := []byte("name,notes\r\nalice,\"line one\nline two\"\r\n")
	rows, err := ReadDelimited(data, ',', '"')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "line one\nline two", rows[0]["notes"])
}

func TestReadDelimitedErrors(t *testing.T) {
	var derr *DataFormatError

	_, err := ReadDelimited([]byte("a,b\n1,2,3\n"), ',', '"')
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Message, "fields")

	_, err = ReadDelimited([]byte("a,b\n\"unterminated,2\n"), ',', '"')
	require.ErrorAs(t, err, &derr)

	rows, err := ReadDelimited(nil, ',', '"')
	require.NoError(t, err)
	assert.Empty(t, rows)
}
