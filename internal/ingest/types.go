package ingest

import (
	"fmt"
	"strconv"
)

// ColumnType is the declared semantic type of a column during ingestion.
type ColumnType string

const (
	TypePrimaryKey ColumnType = "primary key"
	TypeEdgeSource ColumnType = "edge source"
	TypeEdgeTarget ColumnType = "edge target"
	TypeLabel      ColumnType = "label"
	TypeString     ColumnType = "string"
	TypeBoolean    ColumnType = "boolean"
	TypeCategory   ColumnType = "category"
	TypeNumber     ColumnType = "number"
	TypeDate       ColumnType = "date"
	TypeIgnored    ColumnType = "ignored"
)

var columnTypes = map[ColumnType]bool{
	TypePrimaryKey: true,
	TypeEdgeSource: true,
	TypeEdgeTarget: true,
	TypeLabel:      true,
	TypeString:     true,
	TypeBoolean:    true,
	TypeCategory:   true,
	TypeNumber:     true,
	TypeDate:       true,
	TypeIgnored:    true,
}

// ParseColumnType validates a wire-level column type string.
func ParseColumnType(s string) (ColumnType, error) {
	ct := ColumnType(s)
	if !columnTypes[ct] {
		return "", fmt.Errorf("unknown column type %q", s)
	}
	return ct, nil
}

// Reserved document field names used by the storage engine.
const (
	KeyField    = "_key"
	IDField     = "_id"
	RevField    = "_rev"
	SourceField = "_from"
	TargetField = "_to"
)

// stringify renders a cell value the way it would appear in delimited text.
// JSON numbers arrive as float64, so integral values must not grow a
// trailing ".0" when used as document keys or endpoint references.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// isEmpty reports whether a cell value should be treated as missing.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}
