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

// ProcessCSV ingests a delimited-text blob into a new table.
func ProcessCSV(app *appcontext.Context) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ProcessCSVPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to decode csv payload: %w", err)
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

			rows, err := ingest.ReadDelimited(data, firstRune(p.Delimiter, ','), firstRune(p.QuoteChar, '"'))
			if err != nil {
				return err
			}

			columns := make(map[string]ingest.ColumnType, len(p.Columns))
			for _, col := range p.Columns {
				ct, err := ingest.ParseColumnType(col.Type)
				if err != nil {
					return &ingest.SchemaValidationError{Message: err.Error()}
				}
				columns[col.Key] = ct
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
