package ingest

import "strings"

// RowNormalizer converts raw rows into canonical documents for a single
// table, according to a declared column-role map. Role cardinality is
// validated once at construction; Normalize is then applied per row.
type RowNormalizer struct {
	columns       map[string]ColumnType
	primaryKey    string
	edgeSource    string
	edgeTarget    string
	nodeTableName string
}

// NewRowNormalizer validates the column-role map and returns a normalizer.
//
// Validation rules: at most one primary key, edge source and edge target;
// source and target must be declared together; a table declared as an edge
// table must declare both; a node table name is only meaningful for edge
// tables. Violations return a SchemaValidationError and abort the batch.
func NewRowNormalizer(columns map[string]ColumnType, edge bool, nodeTableName string) (*RowNormalizer, error) {
	var primaryKey, edgeSource, edgeTarget string
	var primaryCount, sourceCount, targetCount int

	for col, typ := range columns {
		switch typ {
		case TypePrimaryKey:
			primaryKey = col
			primaryCount++
		case TypeEdgeSource:
			edgeSource = col
			sourceCount++
		case TypeEdgeTarget:
			edgeTarget = col
			targetCount++
		}
	}

	if primaryCount > 1 {
		return nil, &SchemaValidationError{Message: "multiple primary keys found"}
	}
	if sourceCount > 1 {
		return nil, &SchemaValidationError{Message: "multiple edge sources found"}
	}
	if targetCount > 1 {
		return nil, &SchemaValidationError{Message: "multiple edge targets found"}
	}
	if sourceCount != targetCount {
		return nil, &SchemaValidationError{Message: "edge source and edge target must be present together"}
	}
	if edge && sourceCount == 0 {
		return nil, &SchemaValidationError{Message: "edge source and edge target must both be present on an edge table"}
	}
	if nodeTableName != "" && !edge {
		return nil, &SchemaValidationError{Message: "a node table name may only be supplied for an edge table"}
	}
	if nodeTableName != "" && sourceCount == 0 {
		return nil, &SchemaValidationError{Message: "edge source and edge target must be declared when a node table name is supplied"}
	}

	return &RowNormalizer{
		columns:       columns,
		primaryKey:    primaryKey,
		edgeSource:    edgeSource,
		edgeTarget:    edgeTarget,
		nodeTableName: nodeTableName,
	}, nil
}

// Normalize produces the canonical document for a raw row, or nil when the
// row must be dropped. Dropped rows are not errors: they are silently
// excluded from the built table.
func (n *RowNormalizer) Normalize(row map[string]interface{}) map[string]interface{} {
	doc := make(map[string]interface{}, len(row))
	for k, v := range row {
		doc[k] = v
	}

	if n.primaryKey != "" {
		if isEmpty(doc[n.primaryKey]) {
			return nil
		}
		doc[KeyField] = stringify(doc[n.primaryKey])
		delete(doc, n.primaryKey)
	}

	if n.edgeSource != "" && n.edgeTarget != "" {
		if isEmpty(doc[n.edgeSource]) || isEmpty(doc[n.edgeTarget]) {
			return nil
		}

		from, ok := n.qualifyEndpoint(stringify(doc[n.edgeSource]))
		if !ok {
			return nil
		}
		to, ok := n.qualifyEndpoint(stringify(doc[n.edgeTarget]))
		if !ok {
			return nil
		}

		delete(doc, n.edgeSource)
		delete(doc, n.edgeTarget)
		doc[SourceField] = from
		doc[TargetField] = to
	} else {
		// Columns that collide with the reserved endpoint names but were not
		// declared as source/target would be clobbered by the storage engine.
		// Rename them so the data survives.
		if v, ok := doc[SourceField]; ok {
			doc["fixed_from"] = stringify(v)
			delete(doc, SourceField)
		}
		if v, ok := doc[TargetField]; ok {
			doc["fixed_to"] = stringify(v)
			delete(doc, TargetField)
		}
	}

	for col, typ := range n.columns {
		if typ == TypeIgnored {
			delete(doc, col)
			continue
		}

		entry, ok := doc[col]
		if !ok || entry == nil {
			continue
		}

		value, err := Coerce(stringify(entry), typ)
		if err != nil {
			// Best-effort coercion: keep the raw value on failure.
			continue
		}
		doc[col] = value
	}

	return doc
}

// qualifyEndpoint formats an endpoint reference as "<table>/<key>".
//
// A value that already contains a separator is taken as pre-qualified;
// otherwise the configured node table name qualifies it. The row is dropped
// (false) when no node table name is available for an unqualified value, when
// the qualified table does not match the expected node table, or when the
// reference contains more than one separator.
func (n *RowNormalizer) qualifyEndpoint(value string) (string, bool) {
	if !strings.Contains(value, "/") {
		if n.nodeTableName == "" {
			return "", false
		}
		value = n.nodeTableName + "/" + value
	}

	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return "", false
	}
	if n.nodeTableName != "" && parts[0] != n.nodeTableName {
		return "", false
	}

	return value, true
}

// AnnotationColumns returns the column-type map describing the stored shape
// of normalized documents: the primary key, edge source and edge target
// columns are remapped to their reserved field names and ignored columns are
// removed.
func (n *RowNormalizer) AnnotationColumns() map[string]ColumnType {
	out := make(map[string]ColumnType, len(n.columns))
	for col, typ := range n.columns {
		if typ == TypeIgnored {
			continue
		}
		switch col {
		case n.primaryKey:
			if typ == TypePrimaryKey {
				col = KeyField
			}
		case n.edgeSource:
			if typ == TypeEdgeSource {
				col = SourceField
			}
		case n.edgeTarget:
			if typ == TypeEdgeTarget {
				col = TargetField
			}
		}
		out[col] = typ
	}
	return out
}
