package arango

import (
	"fmt"
	"strings"

	"github.com/multinet-app/multinet-api/internal/ingest"
)

// FromCollections builds a query returning every document across the given
// collections, all names passed as bind variables.
func FromCollections(collections []string) *ingest.Query {
	collVars := make([]string, 0, len(collections))
	bindVars := make(map[string]interface{}, len(collections))
	for i, coll := range collections {
		key := fmt.Sprintf("@coll%d", i)
		collVars = append(collVars, "@"+key)
		bindVars[key] = coll
	}

	source := collVars[0]
	if len(collVars) > 1 {
		source = fmt.Sprintf("UNION(%s)", strings.Join(collVars, ", "))
	}

	return &ingest.Query{
		Statement: fmt.Sprintf("FOR doc IN %s RETURN doc", source),
		BindVars:  bindVars,
	}
}

// Paginate wraps a query with a LIMIT clause. Zero limit and offset return
// the query unchanged.
func Paginate(q *ingest.Query, limit, offset int) *ingest.Query {
	if limit == 0 && offset == 0 {
		return q
	}

	bindVars := make(map[string]interface{}, len(q.BindVars)+2)
	for k, v := range q.BindVars {
		bindVars[k] = v
	}
	bindVars["offset"] = offset
	bindVars["limit"] = limit

	return &ingest.Query{
		Statement: fmt.Sprintf("FOR doc IN (%s) LIMIT @offset, @limit RETURN doc", q.Statement),
		BindVars:  bindVars,
	}
}
