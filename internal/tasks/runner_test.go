package tasks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
)

func testContext(t *testing.T) *appcontext.Context {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Upload{}, &entity.AqlQuery{}))

	return &appcontext.Context{DB: db, Logger: zap.NewNop()}
}

func testUpload(t *testing.T, app *appcontext.Context) *entity.Upload {
	t.Helper()

	upload := entity.Upload{
		Blob:      "uploads/test.csv",
		DataType:  entity.UploadCSV,
		TaskState: entity.TaskState{Status: entity.TaskPending},
	}
	require.NoError(t, app.DB.Create(&upload).Error)
	return &upload
}

func TestRunTaskFinishes(t *testing.T) {
	app := testContext(t)
	upload := testUpload(t, app)

	var observed entity.TaskStatus
	err := runTask(app, upload.ID, upload, func() error {
		var mid entity.Upload
		require.NoError(t, app.DB.First(&mid, "id = ?", upload.ID).Error)
		observed = mid.Status
		return nil
	})
	require.NoError(t, err)

	// The record is STARTED while the body runs and FINISHED afterward.
	assert.Equal(t, entity.TaskStarted, observed)

	var after entity.Upload
	require.NoError(t, app.DB.First(&after, "id = ?", upload.ID).Error)
	assert.Equal(t, entity.TaskFinished, after.Status)
	assert.Empty(t, after.ErrorMessages)
}

func TestRunTaskFails(t *testing.T) {
	app := testContext(t)
	upload := testUpload(t, app)

	err := runTask(app, upload.ID, upload, func() error {
		return errors.New("bad header row")
	})
	require.Error(t, err)

	var after entity.Upload
	require.NoError(t, app.DB.First(&after, "id = ?", upload.ID).Error)
	assert.Equal(t, entity.TaskFailed, after.Status)
	require.Len(t, after.ErrorMessages, 1)
	assert.Equal(t, "bad header row", after.ErrorMessages[0])
}

func TestRunTaskFailedStateIsTerminal(t *testing.T) {
	app := testContext(t)
	upload := testUpload(t, app)

	// A body that fails the task itself after partial work must not be
	// flipped back to FINISHED by a clean return.
	err := runTask(app, upload.ID, upload, func() error {
		failTask(app, upload, "row 12 rejected")
		return nil
	})
	require.NoError(t, err)

	var after entity.Upload
	require.NoError(t, app.DB.First(&after, "id = ?", upload.ID).Error)
	assert.Equal(t, entity.TaskFailed, after.Status)
	require.Len(t, after.ErrorMessages, 1)
}

func TestFailTaskAccumulatesErrors(t *testing.T) {
	app := testContext(t)
	upload := testUpload(t, app)

	failTask(app, upload, "first")
	failTask(app, upload, "second")

	var after entity.Upload
	require.NoError(t, app.DB.First(&after, "id = ?", upload.ID).Error)
	assert.Equal(t, entity.TaskFailed, after.Status)
	assert.Equal(t, []string{"first", "second"}, []string(after.ErrorMessages))
}

func TestQueryIsMutating(t *testing.T) {
	assert.False(t, QueryIsMutating("FOR doc IN people RETURN doc"))
	assert.True(t, QueryIsMutating("FOR doc IN people REMOVE doc IN people"))
	assert.True(t, QueryIsMutating("insert { a: 1 } into people"))
	assert.True(t, QueryIsMutating("UPSERT { name: 'x' } INSERT {} UPDATE {} IN people"))

	// Keywords only count as whole words outside string literals.
	assert.False(t, QueryIsMutating("FOR doc IN updates RETURN doc"))
	assert.False(t, QueryIsMutating("FOR doc IN removed_users RETURN doc.insertion"))
	assert.False(t, QueryIsMutating(`FOR doc IN people FILTER doc.note == 'please insert here' RETURN doc`))
	assert.False(t, QueryIsMutating(`FOR doc IN people FILTER doc.kind == "remove" RETURN doc`))
	assert.True(t, QueryIsMutating("FOR doc IN updates UPDATE doc WITH { seen: true } IN updates"))
}
