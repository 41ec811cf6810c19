package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceBoolean(t *testing.T) {
	truthy := []string{"1", "true", "yes", "on"}
	falsy := []string{"0", "false", "no", "off"}

	for _, raw := range truthy {
		v, err := Coerce(raw, TypeBoolean)
		require.NoError(t, err, raw)
		assert.Equal(t, true, v, raw)
	}
	for _, raw := range falsy {
		v, err := Coerce(raw, TypeBoolean)
		require.NoError(t, err, raw)
		assert.Equal(t, false, v, raw)
	}

	for _, raw := range []string{"True", "YES", "2", "", "maybe"} {
		_, err := Coerce(raw, TypeBoolean)
		var cerr *CoercionError
		require.ErrorAs(t, err, &cerr, raw)
		assert.Equal(t, TypeBoolean, cerr.Type)
		assert.Equal(t, raw, cerr.Value)
	}
}

func TestCoerceNumber(t *testing.T) {
	v, err := Coerce("42", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = Coerce("-7", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), v)

	v, err = Coerce("3.25", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v)

	v, err = Coerce("1e3", TypeNumber)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)

	_, err = Coerce("forty-two", TypeNumber)
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, TypeNumber, cerr.Type)
}

func TestCoerceDate(t *testing.T) {
	// Unix timestamps take priority over calendar formats.
	v, err := Coerce("0", TypeDate)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).Format("2006-01-02T15:04:05"), v)

	v, err = Coerce("2om", TypeDate)
	assert.Error(t, err)
	assert.Nil(t, v)

	v, err = Coerce("2001-09-09T01:46:40", TypeDate)
	require.NoError(t, err)
	assert.Equal(t, "2001-09-09T01:46:40", v)

	v, err = Coerce("Jan 2, 2006", TypeDate)
	require.NoError(t, err)
	assert.Equal(t, "2006-01-02T00:00:00", v)

	// A numeric magnitude beyond the representable timestamp range must not
	// be fabricated into a date.
	for _, raw := range []string{"1e300", "-1e300"} {
		_, err = Coerce(raw, TypeDate)
		var cerr *CoercionError
		require.ErrorAs(t, err, &cerr, raw)
		assert.Equal(t, raw, cerr.Value)
	}
}

func TestCoercePassthrough(t *testing.T) {
	for _, typ := range []ColumnType{TypeLabel, TypeString, TypeCategory, TypePrimaryKey} {
		v, err := Coerce("anything at all", typ)
		require.NoError(t, err)
		assert.Equal(t, "anything at all", v)
	}
}

func TestParseColumnType(t *testing.T) {
	ct, err := ParseColumnType("edge source")
	require.NoError(t, err)
	assert.Equal(t, TypeEdgeSource, ct)

	_, err = ParseColumnType("integer")
	assert.Error(t, err)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "1", stringify(float64(1)))
	assert.Equal(t, "1.5", stringify(1.5))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "abc", stringify("abc"))
}
