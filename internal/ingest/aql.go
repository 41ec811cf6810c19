package ingest

// The join compiler translates a declarative table/edge join specification
// into AQL executed server-side by the storage engine. Compilation performs
// no I/O; the caller executes the resulting queries.

// Link names the pair of columns joined across two tables.
type Link struct {
	Local   string `json:"local" binding:"required"`
	Foreign string `json:"foreign" binding:"required"`
}

// TableSpec selects a source table, the columns excluded from the output and
// an optional join against a foreign table.
type TableSpec struct {
	Name     string    `json:"name" binding:"required"`
	Excluded []string  `json:"excluded"`
	Joined   *JoinSpec `json:"joined,omitempty"`
}

// JoinSpec merges fields from a foreign table into each source row. The
// first foreign row whose link column matches is used; no match merges
// nothing.
type JoinSpec struct {
	Table TableSpec `json:"table" binding:"required"`
	Link  Link      `json:"link" binding:"required"`
}

// EdgeSpec describes how an edge table is derived: its rows, joined like any
// other table, plus source and target links resolved against node tables.
type EdgeSpec struct {
	Table  TableSpec `json:"table" binding:"required"`
	Source Link      `json:"source" binding:"required"`
	Target Link      `json:"target" binding:"required"`
}

// Query is a compiled AQL statement with its bind variables.
type Query struct {
	Statement string
	BindVars  map[string]interface{}
}

// reservedAnd appends the storage engine's identifier fields to an exclusion
// list so they never leak into a newly built table.
func reservedAnd(excluded []string) []string {
	out := make([]string, 0, len(excluded)+3)
	out = append(out, IDField, KeyField, RevField)
	out = append(out, excluded...)
	return out
}

// CompileNodeTable builds the query that copies spec's rows into the target
// collection, applying exclusions and the optional foreign join.
func CompileNodeTable(spec TableSpec, target string) *Query {
	bindVars := map[string]interface{}{
		"@SOURCE":  spec.Name,
		"@TARGET":  target,
		"EXCLUDED": reservedAnd(spec.Excluded),
	}

	statement := `
		FOR doc IN @@SOURCE
			LET base = UNSET(doc, @EXCLUDED)
	`

	if spec.Joined != nil {
		bindVars["@JOINED"] = spec.Joined.Table.Name
		bindVars["JOINED_EXCLUDED"] = reservedAnd(spec.Joined.Table.Excluded)
		bindVars["LOCAL"] = spec.Joined.Link.Local
		bindVars["FOREIGN"] = spec.Joined.Link.Foreign
		statement += `
			LET joined = FIRST(
				FOR other IN @@JOINED
					FILTER other.@FOREIGN == doc.@LOCAL
					RETURN UNSET(other, @JOINED_EXCLUDED)
			)
			LET new = MERGE(base, joined != null ? joined : {})
		`
	} else {
		statement += `
			LET new = base
		`
	}

	statement += `
			INSERT new INTO @@TARGET
	`

	return &Query{Statement: statement, BindVars: bindVars}
}

// CompileEdgeTable builds the query that copies the edge spec's rows into the
// target edge collection. Each row's source and target links are resolved to
// document ids in the given node tables; rows whose source or target matches
// no node document are excluded entirely.
func CompileEdgeTable(spec EdgeSpec, target, sourceTable, targetTable string) *Query {
	bindVars := map[string]interface{}{
		"@SOURCE":        spec.Table.Name,
		"@TARGET":        target,
		"@SOURCE_TABLE":  sourceTable,
		"@TARGET_TABLE":  targetTable,
		"EXCLUDED":       reservedAnd(spec.Table.Excluded),
		"SOURCE_LOCAL":   spec.Source.Local,
		"SOURCE_FOREIGN": spec.Source.Foreign,
		"TARGET_LOCAL":   spec.Target.Local,
		"TARGET_FOREIGN": spec.Target.Foreign,
	}

	statement := `
		FOR doc IN @@SOURCE
			LET fromId = FIRST(
				FOR node IN @@SOURCE_TABLE
					FILTER node.@SOURCE_FOREIGN == doc.@SOURCE_LOCAL
					RETURN node._id
			)
			LET toId = FIRST(
				FOR node IN @@TARGET_TABLE
					FILTER node.@TARGET_FOREIGN == doc.@TARGET_LOCAL
					RETURN node._id
			)
			FILTER fromId != null AND toId != null
			LET base = UNSET(doc, @EXCLUDED)
	`

	if spec.Table.Joined != nil {
		bindVars["@JOINED"] = spec.Table.Joined.Table.Name
		bindVars["JOINED_EXCLUDED"] = reservedAnd(spec.Table.Joined.Table.Excluded)
		bindVars["LOCAL"] = spec.Table.Joined.Link.Local
		bindVars["FOREIGN"] = spec.Table.Joined.Link.Foreign
		statement += `
			LET joined = FIRST(
				FOR other IN @@JOINED
					FILTER other.@FOREIGN == doc.@LOCAL
					RETURN UNSET(other, @JOINED_EXCLUDED)
			)
			LET new = MERGE(base, joined != null ? joined : {})
		`
	} else {
		statement += `
			LET new = base
		`
	}

	statement += `
			INSERT MERGE(new, { _from: fromId, _to: toId }) INTO @@TARGET
	`

	return &Query{Statement: statement, BindVars: bindVars}
}
