package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/hibiken/asynq"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/services"
)

// mutatingKeywords screens ad-hoc queries: query tasks are read-only.
var mutatingKeywords = map[string]bool{
	"INSERT":  true,
	"UPDATE":  true,
	"REPLACE": true,
	"REMOVE":  true,
	"UPSERT":  true,
}

// QueryIsMutating reports whether an AQL statement uses a data modification
// operation. Keywords match as whole words outside string literals and
// quoted identifiers, so a collection named "updates" or a string value
// containing "insert" does not trip the screen.
func QueryIsMutating(query string) bool {
	var (
		word    strings.Builder
		quote   rune
		escaped bool
	)
	flush := func() bool {
		mutating := mutatingKeywords[strings.ToUpper(word.String())]
		word.Reset()
		return mutating
	}

	for _, r := range query {
		switch {
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			if flush() {
				return true
			}
			quote = r
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			if flush() {
				return true
			}
		}
	}
	return flush()
}

// ExecuteQuery runs an ad-hoc read-only query against a workspace and stores
// the results on the task record.
func ExecuteQuery(app *appcontext.Context) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ExecuteQueryPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to decode query payload: %w", err)
		}

		var query entity.AqlQuery
		if err := app.DB.First(&query, "id = ?", p.QueryID).Error; err != nil {
			return fmt.Errorf("failed to load query %s: %w", p.QueryID, err)
		}

		var workspace entity.Workspace
		if err := app.DB.First(&workspace, "id = ?", query.WorkspaceID).Error; err != nil {
			return fmt.Errorf("failed to load workspace of query %s: %w", p.QueryID, err)
		}

		return runTask(app, p.QueryID, &query, func() error {
			db, err := services.WorkspaceDatabase(ctx, app, &workspace)
			if err != nil {
				return err
			}

			var bindVars map[string]interface{}
			if len(query.BindVars) > 0 {
				if err := json.Unmarshal(query.BindVars, &bindVars); err != nil {
					return fmt.Errorf("failed to decode bind variables: %w", err)
				}
			}

			docs, err := db.Query(ctx, query.Query, bindVars)
			if err != nil {
				return err
			}

			results, err := json.Marshal(docs)
			if err != nil {
				return fmt.Errorf("failed to encode query results: %w", err)
			}
			query.Results = results
			return nil
		})
	}
}
