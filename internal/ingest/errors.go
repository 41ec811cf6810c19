package ingest

import "fmt"

// CoercionError reports a cell value that does not match its declared type.
// Callers recover from it locally and keep the raw string value.
type CoercionError struct {
	Value string
	Type  ColumnType
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s", e.Value, e.Type)
}

// SchemaValidationError reports a column-role cardinality violation. It is
// fatal to the whole ingestion: no rows are processed once raised.
type SchemaValidationError struct {
	Message string
}

func (e *SchemaValidationError) Error() string {
	return e.Message
}

// DataFormatError reports malformed top-level input, such as unparseable
// CSV/JSON or a network file missing its nodes or links.
type DataFormatError struct {
	Message string
}

func (e *DataFormatError) Error() string {
	return e.Message
}
