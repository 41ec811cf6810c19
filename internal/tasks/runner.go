package tasks

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multinet-app/multinet-api/internal/appcontext"
	"github.com/multinet-app/multinet-api/internal/entity"
)

// trackedTask is any record carrying the shared task state.
type trackedTask interface {
	State() *entity.TaskState
}

// runTask drives the task state machine around a pipeline body. The record
// is marked STARTED before the body runs; an error from the body appends to
// the record's error list and marks it FAILED. On a clean return the record
// is marked FINISHED only if it is still STARTED, so a body that already
// failed the task after partial work is never flipped back.
func runTask(app *appcontext.Context, taskID uuid.UUID, task trackedTask, body func() error) error {
	app.Logger.Info("begin task processing", zap.String("task_id", taskID.String()))

	state := task.State()
	state.Status = entity.TaskStarted
	if err := app.DB.Save(task).Error; err != nil {
		return fmt.Errorf("failed to mark task started: %w", err)
	}

	if err := body(); err != nil {
		failTask(app, task, err.Error())
		return err
	}

	if state.Status == entity.TaskStarted {
		state.Status = entity.TaskFinished
		if err := app.DB.Save(task).Error; err != nil {
			return fmt.Errorf("failed to mark task finished: %w", err)
		}
	}

	return nil
}

// failTask appends a message to the task's error list and marks it FAILED.
// The list accumulates across retries and is never overwritten.
func failTask(app *appcontext.Context, task trackedTask, message string) {
	state := task.State()
	state.Status = entity.TaskFailed
	state.ErrorMessages = append(state.ErrorMessages, message)
	if err := app.DB.Save(task).Error; err != nil {
		app.Logger.Error("failed to persist task failure", zap.Error(err))
	}
}
