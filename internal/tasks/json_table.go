package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/ingest"
	"github.com/multinet-app/multinet-api/internal/services"
	"github.com/multinet-app/multinet-api/internal/utils"
)

// ProcessJSONTable ingests a JSON array of objects into a new table.
func ProcessJSONTable(app *appcontext.Context) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ProcessJSONTablePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to decode json table payload: %w", err)
		}

		upload, workspace, err := loadUpload(app, p.UploadID)
		if err != nil {
			return err
		}

		return runTask(app, p.UploadID, upload, func() error {
			data, err := utils.ReadBlob(ctx, app, upload.Blob)
			if err != nil {
				return err
			}

			var rows []map[string]interface{}
			if err := json.Unmarshal(data, &rows); err != nil {
				return &ingest.DataFormatError{Message: "failed to parse JSON table: expected an array of objects"}
			}

			columns, err := parseColumnTypes(p.Columns)
			if err != nil {
				return err
			}

			_, _, err = services.BuildTable(ctx, app, workspace, services.BuildTableOptions{
				Name:    p.TableName,
				Edge:    p.Edge,
				Columns: columns,
			}, rows)
			return err
		})
	}
}
