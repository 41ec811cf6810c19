package tasks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
	"github.com/multinet-app/multinet-api/internal/ingest"
)

// loadUpload fetches an upload record and its workspace.
func loadUpload(app *appcontext.Context, uploadID uuid.UUID) (*entity.Upload, *entity.Workspace, error) {
	var upload entity.Upload
	if err := app.DB.First(&upload, "id = ?", uploadID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load upload %s: %w", uploadID, err)
	}

	var workspace entity.Workspace
	if err := app.DB.First(&workspace, "id = ?", upload.WorkspaceID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load workspace of upload %s: %w", uploadID, err)
	}

	return &upload, &workspace, nil
}

// parseColumnTypes validates a wire-level column-role map.
func parseColumnTypes(columns map[string]string) (map[string]ingest.ColumnType, error) {
	out := make(map[string]ingest.ColumnType, len(columns))
	for column, typ := range columns {
		ct, err := ingest.ParseColumnType(typ)
		if err != nil {
			return nil, &ingest.SchemaValidationError{Message: err.Error()}
		}
		out[column] = ct
	}
	return out, nil
}

// firstRune extracts a single-character wire field, falling back to a
// default when absent.
func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}
