package entity

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskStatus is the lifecycle state of an asynchronous task. FINISHED and
// FAILED are terminal: no transition ever leaves them.
type TaskStatus string

const (
	TaskPending  TaskStatus = "PENDING"
	TaskStarted  TaskStatus = "STARTED"
	TaskFinished TaskStatus = "FINISHED"
	TaskFailed   TaskStatus = "FAILED"
)

// TaskState carries the fields shared by every tracked asynchronous task.
// Error messages accumulate across retries and are never overwritten.
type TaskState struct {
	Status        TaskStatus                  `gorm:"type:varchar(10);default:PENDING" json:"status"`
	ErrorMessages datatypes.JSONSlice[string] `json:"error_messages"`
}

// UploadKind discriminates the ingestion pipelines.
type UploadKind string

const (
	UploadCSV         UploadKind = "CSV"
	UploadJSONTable   UploadKind = "JSON_TABLE"
	UploadJSONNetwork UploadKind = "JSON_NETWORK"
)

// Upload tracks one blob-ingestion task.
type Upload struct {
	gorm.Model
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null" json:"workspace_id"`
	UserID      *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	Blob        string     `gorm:"type:text;not null" json:"blob"`
	DataType    UploadKind `gorm:"type:varchar(20);not null" json:"data_type"`
	TaskState   `gorm:"embedded"`
}

func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// State exposes the shared task fields to the task runner.
func (u *Upload) State() *TaskState { return &u.TaskState }

// AqlQuery tracks one ad-hoc read-only query task; results are stored on the
// record when the task finishes.
type AqlQuery struct {
	gorm.Model
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	WorkspaceID uuid.UUID      `gorm:"type:uuid;not null" json:"workspace_id"`
	UserID      *uuid.UUID     `gorm:"type:uuid" json:"user_id"`
	Query       string         `gorm:"type:text;not null" json:"query"`
	BindVars    datatypes.JSON `json:"bind_vars"`
	Results     datatypes.JSON `json:"results"`
	TaskState   `gorm:"embedded"`
}

func (q *AqlQuery) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *AqlQuery) State() *TaskState { return &q.TaskState }
