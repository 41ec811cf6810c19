package utils

import (
	"context"
	"fmt"
	"io"

	"github.com/multinet-app/multinet-api/internal/appcontext"
)

// ReadBlob downloads an uploaded object's bytes from the blob store.
func ReadBlob(ctx context.Context, app *appcontext.Context, objectKey string) ([]byte, error) {
	reader, err := app.GCSClient.Bucket(app.GCSBucketName).Object(objectKey).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", objectKey, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", objectKey, err)
	}
	return data, nil
}

// WriteBlob stores bytes in the blob store under the given object key.
func WriteBlob(ctx context.Context, app *appcontext.Context, objectKey string, src io.Reader) error {
	w := app.GCSClient.Bucket(app.GCSBucketName).Object(objectKey).NewWriter(ctx)
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", objectKey, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize blob %s: %w", objectKey, err)
	}
	return nil
}
